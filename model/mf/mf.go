// Copyright 2021 cross-metadata-mf Project Authors
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

// Package mf implements matrix factorization trainers for positive-only
// feedback: implicit-feedback ALS, its RR1-accelerated variant, and two
// cross-domain extensions that couple source and target item factors.
package mf

import (
	"context"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/nachoft/cross-metadata-mf/base"
	"github.com/nachoft/cross-metadata-mf/base/floats"
	"github.com/nachoft/cross-metadata-mf/base/log"
	"github.com/nachoft/cross-metadata-mf/dataset"
	"github.com/nachoft/cross-metadata-mf/model"
)

// FitConfig controls the execution of a training run, not the objective:
// hyper-parameters live in model.Params.
type FitConfig struct {
	Jobs    int // number of parallel workers per phase
	Verbose int // compute and log the loss every Verbose iterations, 0 disables
}

// NewFitConfig creates a default fit config.
func NewFitConfig() *FitConfig {
	return &FitConfig{Jobs: 1}
}

// SetJobs sets the number of parallel workers.
func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

// SetVerbose sets the loss reporting period.
func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

// LoadDefaultIfNil returns a default config when nil.
func (config *FitConfig) LoadDefaultIfNil() *FitConfig {
	if config == nil {
		return NewFitConfig()
	}
	return config
}

// Trainer is implemented by every matrix factorization trainer in this
// package.
type Trainer interface {
	model.Predictor
	// Fit the model on a training set. The context is checked at iteration
	// boundaries only.
	Fit(ctx context.Context, train *dataset.Dataset, config *FitConfig) error
	// Loss returns the objective on the training set for the current factors.
	Loss() float32
}

var (
	_ Trainer = &ImplicitALS{}
	_ Trainer = &FastALS{}
	_ Trainer = &SimMF{}
	_ Trainer = &NeighborMF{}
)

// FactorModel holds the latent factors shared by all trainers. Factor rows
// are indexed by the dense indices of the training set.
type FactorModel struct {
	model.BaseModel
	Data       *dataset.Dataset
	UserFactor [][]float32 // p_u
	ItemFactor [][]float32 // q_i
	// Hyper parameters
	nFactors   int
	nEpochs    int
	reg        float32
	alpha      float32
	initMean   float32
	initStdDev float32
}

// SetParams sets hyper-parameters for the model.
func (m *FactorModel) SetParams(params model.Params) {
	m.BaseModel.SetParams(params)
	m.nFactors = m.Params.GetInt(model.NFactors, 10)
	m.nEpochs = m.Params.GetInt(model.NEpochs, 15)
	m.reg = m.Params.GetFloat32(model.Reg, 0.015)
	m.alpha = m.Params.GetFloat32(model.Alpha, 1)
	m.initMean = m.Params.GetFloat32(model.InitMean, 0)
	m.initStdDev = m.Params.GetFloat32(model.InitStdDev, 0.1)
}

// Init allocates the factor matrices with one row per dense index and fills
// them with gaussian draws. Each matrix is filled from a generator freshly
// seeded with the configured random state, so identical inputs reproduce
// identical factors.
func (m *FactorModel) Init(train *dataset.Dataset) {
	m.Data = train
	m.UserFactor = base.NewRandomGenerator(m.RandState()).
		NormalMatrix(int(train.MaxUserId())+1, m.nFactors, m.initMean, m.initStdDev)
	m.ItemFactor = base.NewRandomGenerator(m.RandState()).
		NormalMatrix(int(train.MaxItemId())+1, m.nFactors, m.initMean, m.initStdDev)
}

// NumFactors returns the number of latent factors.
func (m *FactorModel) NumFactors() int {
	return m.nFactors
}

// Predict returns the estimated preference of a user towards an item, or NaN
// when the user or the item is unknown.
func (m *FactorModel) Predict(user, item string) float32 {
	userIndex := m.Data.UserId(user)
	itemIndex := m.Data.ItemId(item)
	if userIndex == dataset.NotId || itemIndex == dataset.NotId {
		return math32.NaN()
	}
	return m.internalPredict(userIndex, itemIndex)
}

func (m *FactorModel) internalPredict(userIndex, itemIndex int32) float32 {
	return floats.Dot(m.UserFactor[userIndex], m.ItemFactor[itemIndex])
}

// fitLoop runs the shared outer ALS loop. The user phase and the item phase
// are supplied by the concrete trainer; phases are sequenced, never
// overlapped.
func (m *FactorModel) fitLoop(ctx context.Context, config *FitConfig,
	userPhase, itemPhase func(jobs int) error, loss func() float32) error {
	for epoch := 1; epoch <= m.nEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		fitStart := time.Now()
		if err := userPhase(config.Jobs); err != nil {
			return err
		}
		if err := itemPhase(config.Jobs); err != nil {
			return err
		}
		fitTime := time.Since(fitStart)
		if config.Verbose > 0 && epoch%config.Verbose == 0 {
			log.Logger().Info("fit",
				zap.Int("epoch", epoch),
				zap.Int("epochs", m.nEpochs),
				zap.Duration("fit_time", fitTime),
				zap.Float32("loss", loss()))
		} else {
			log.Logger().Debug("fit",
				zap.Int("epoch", epoch),
				zap.Int("epochs", m.nEpochs),
				zap.Duration("fit_time", fitTime))
		}
	}
	return nil
}
