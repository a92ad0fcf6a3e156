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
	"reflect"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/nachoft/cross-metadata-mf/base/log"
)

// ParamName is the type of hyper-parameter names.
type ParamName string

// Predefined hyper-parameter names
const (
	NFactors    ParamName = "NFactors"    // number of latent factors
	NEpochs     ParamName = "NEpochs"     // number of ALS iterations
	Reg         ParamName = "Reg"         // ridge regularization strength
	Alpha       ParamName = "Alpha"       // implicit-feedback confidence
	CrossReg    ParamName = "CrossReg"    // cross-domain regularization strength
	RandomState ParamName = "RandomState" // random state (seed)
	InitMean    ParamName = "InitMean"    // mean of gaussian initial parameters
	InitStdDev  ParamName = "InitStdDev"  // standard deviation of gaussian initial parameters
)

// Params stores hyper-parameters for a model. It is a map between strings
// (names) and interface{}s (values). For example, hyper-parameters for
// implicit ALS are given by:
//
//	model.Params{
//		model.NFactors: 10,
//		model.NEpochs:  15,
//		model.Reg:      0.015,
//		model.Alpha:    1,
//	}
type Params map[ParamName]interface{}

// Copy hyper-parameters.
func (parameters Params) Copy() Params {
	newParams := make(Params)
	for k, v := range parameters {
		newParams[k] = v
	}
	return newParams
}

// GetInt gets an integer parameter by name. Returns _default if not exists or
// type doesn't match.
func (parameters Params) GetInt(name ParamName, _default int) int {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case int:
			return val
		default:
			log.Logger().Error("type mismatch in hyper-parameters",
				zap.String("expect", "int"),
				zap.String("name", string(name)),
				zap.String("actual", reflect.TypeOf(val).String()))
		}
	}
	return _default
}

// GetInt64 gets an int64 parameter by name. Returns _default if not exists or
// type doesn't match. The type will be converted if given int.
func (parameters Params) GetInt64(name ParamName, _default int64) int64 {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case int64:
			return val
		case int:
			return int64(val)
		default:
			log.Logger().Error("type mismatch in hyper-parameters",
				zap.String("expect", "int64"),
				zap.String("name", string(name)),
				zap.String("actual", reflect.TypeOf(val).String()))
		}
	}
	return _default
}

// GetBool gets a bool parameter by name. Returns _default if not exists or
// type doesn't match.
func (parameters Params) GetBool(name ParamName, _default bool) bool {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case bool:
			return val
		default:
			log.Logger().Error("type mismatch in hyper-parameters",
				zap.String("expect", "bool"),
				zap.String("name", string(name)),
				zap.String("actual", reflect.TypeOf(val).String()))
		}
	}
	return _default
}

// GetFloat32 gets a float32 parameter by name. Returns _default if not exists
// or type doesn't match. int and float64 values are converted.
func (parameters Params) GetFloat32(name ParamName, _default float32) float32 {
	if val, exist := parameters[name]; exist {
		switch val := val.(type) {
		case float32:
			return val
		case float64:
			return float32(val)
		case int:
			return float32(val)
		default:
			log.Logger().Error("type mismatch in hyper-parameters",
				zap.String("expect", "float32"),
				zap.String("name", string(name)),
				zap.String("actual", reflect.TypeOf(val).String()))
		}
	}
	return _default
}

// Overwrite returns a copy of these parameters with the given ones merged in.
func (parameters Params) Overwrite(params Params) Params {
	merged := make(Params)
	for k, v := range parameters {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	return merged
}

// Validate rejects hyper-parameter values outside their domain: the number of
// factors must be at least 1, iteration counts and regularizers must not be
// negative.
func (parameters Params) Validate() error {
	if parameters.GetInt(NFactors, 1) < 1 {
		return errors.NotValidf("NFactors = %v", parameters[NFactors])
	}
	if parameters.GetInt(NEpochs, 0) < 0 {
		return errors.NotValidf("NEpochs = %v", parameters[NEpochs])
	}
	if parameters.GetFloat32(Reg, 0) < 0 {
		return errors.NotValidf("Reg = %v", parameters[Reg])
	}
	if parameters.GetFloat32(Alpha, 0) < 0 {
		return errors.NotValidf("Alpha = %v", parameters[Alpha])
	}
	if parameters.GetFloat32(CrossReg, 0) < 0 {
		return errors.NotValidf("CrossReg = %v", parameters[CrossReg])
	}
	return nil
}
