// Copyright 2020 cross-metadata-mf Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"github.com/nachoft/cross-metadata-mf/base"
)

// BaseModel must be included by every recommendation model. It manages the
// hyper-parameters and the random seed. Models draw a fresh seeded generator
// per initialization step, so only the seed is held here.
type BaseModel struct {
	Params    Params // Hyper-parameters
	randState int64  // Random seed
}

// SetParams sets hyper-parameters for the BaseModel.
func (model *BaseModel) SetParams(params Params) {
	model.Params = params
	model.randState = model.Params.GetInt64(RandomState, base.RandSeed)
}

// GetParams returns all hyper-parameters.
func (model *BaseModel) GetParams() Params {
	return model.Params
}

// RandState returns the seed this model was configured with.
func (model *BaseModel) RandState() int64 {
	return model.randState
}
