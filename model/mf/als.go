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

package mf

import (
	"context"

	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/nachoft/cross-metadata-mf/base/floats"
	"github.com/nachoft/cross-metadata-mf/base/log"
	"github.com/nachoft/cross-metadata-mf/base/parallel"
	"github.com/nachoft/cross-metadata-mf/dataset"
	"github.com/nachoft/cross-metadata-mf/model"
)

// ImplicitALS is the matrix factorization algorithm for implicit feedback
// proposed in:
//
//	Hu, Y., Koren, Y., Volinsky, C.: Collaborative Filtering for Implicit
//	Feedback Datasets. ICDM 2008
//
// Only unary/binary feedback is supported, frequencies are not considered.
// The confidence of each observation is c(u,i) = 1 + alpha * r(u,i). Each
// row's normal equations are solved exactly by LU decomposition.
//
// Hyper-parameters:
//
//	NFactors   - The number of latent factors. Default is 10.
//	NEpochs    - The number of ALS iterations. Default is 15.
//	Reg        - The ridge regularization strength. Default is 0.015.
//	Alpha      - The confidence weight of observed interactions. Default is 1.
//	InitMean   - The mean of initial latent factors. Default is 0.
//	InitStdDev - The standard deviation of initial latent factors. Default is 0.1.
type ImplicitALS struct {
	FactorModel
}

// NewImplicitALS creates an implicit-feedback ALS trainer.
func NewImplicitALS(params model.Params) *ImplicitALS {
	als := new(ImplicitALS)
	als.SetParams(params)
	return als
}

// Fit trains the model with ALS: each iteration optimizes all user factors
// with the item factors held fixed, then all item factors with the user
// factors held fixed.
func (als *ImplicitALS) Fit(ctx context.Context, train *dataset.Dataset, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if err := als.Params.Validate(); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("fit implicit als",
		zap.Int("train_set_size", train.Count()),
		zap.Any("params", als.GetParams()),
		zap.Any("config", config))
	als.Init(train)
	return als.fitLoop(ctx, config, als.userLeastSquares, als.itemLeastSquares, als.Loss)
}

func (als *ImplicitALS) userLeastSquares(jobs int) error {
	return als.leastSquares(als.UserFactor, als.ItemFactor, als.Data.UserFeedback, jobs)
}

func (als *ImplicitALS) itemLeastSquares(jobs int) error {
	return als.leastSquares(als.ItemFactor, als.UserFactor, als.Data.ItemFeedback, jobs)
}

// leastSquares optimizes every row of p with q fixed. prefs returns the rows
// of q observed together with a row of p.
func (als *ImplicitALS) leastSquares(p, q [][]float32, prefs func(int32) []int32, jobs int) error {
	// G0 = Q'Q, shared by all rows
	g0 := floats.Gram(q, nil)
	return parallel.Parallel(len(p), jobs, func(_, row int) error {
		return als.minimize(prefs(int32(row)), p[row], q, g0)
	})
}

// minimize solves the normal equations of one row:
//
//	(Q'Q + alpha * sum_{i in S} q_i q_i' + reg*I) w = (1 + alpha) * sum_{i in S} q_i
//
// With an empty interaction set the system reduces to (Q'Q + reg*I) w = 0 and
// w is driven to zero.
func (als *ImplicitALS) minimize(prefs []int32, w []float32, q, g0 [][]float32) error {
	k := als.nFactors
	// A = Q'CQ + reg*I = Q'Q + alpha * Q_S'Q_S + reg*I, upper triangle
	// computed and mirrored
	a := mat.NewDense(k, k, nil)
	for k1 := 0; k1 < k; k1++ {
		for k2 := k1; k2 < k; k2++ {
			var s float32
			// if r_ui = 0 then c_ui - 1 = 0, only observed rows contribute
			for _, i := range prefs {
				s += q[i][k1] * q[i][k2]
			}
			value := float64(g0[k1][k2] + s*als.alpha)
			if k1 == k2 {
				value += float64(als.reg)
			}
			a.Set(k1, k2, value)
			a.Set(k2, k1, value)
		}
	}
	// b = Q'Cp = (1 + alpha) * sum_{i in S} q_i
	b := make([]float64, k)
	for k1 := 0; k1 < k; k1++ {
		var s float32
		for _, i := range prefs {
			s += q[i][k1]
		}
		b[k1] = float64(s * (1 + als.alpha))
	}
	if als.reg == 0 {
		// without the ridge a rank-deficient A is singular only up to the
		// float32 rounding of its entries, which LU alone does not report
		var lu mat.LU
		lu.Factorize(a)
		if cond := lu.Cond(); cond > 1<<23 {
			return errors.Errorf("mf: singular system (condition number %g), use a positive regularizer", cond)
		}
	}
	return solveLU(a, b, w)
}

// Loss computes the objective over the training set for the current state of
// the model:
//
//	L = sum_{u,i} c_ui (p_ui - u'v)^2 + reg * (|U|^2 + |V|^2)
//
// The sum runs over all (user, item) pairs and is expensive.
func (als *ImplicitALS) Loss() float32 {
	return als.lossWith(nil)
}

// lossWith adds an optional variant-specific penalty evaluated outside the
// per-pair sum.
func (als *ImplicitALS) lossWith(penalty func() float64) float32 {
	loss := als.pairwiseLoss()
	if als.reg > 0 {
		loss += float64(als.reg) * float64(floats.MatSquaredNorm(als.UserFactor)+floats.MatSquaredNorm(als.ItemFactor))
	}
	if penalty != nil {
		loss += penalty()
	}
	return float32(loss)
}

func (als *ImplicitALS) pairwiseLoss() float64 {
	var loss float64
	for userIndex := int32(0); userIndex <= als.Data.MaxUserId(); userIndex++ {
		items := als.Data.UserItems(userIndex)
		for itemIndex := int32(0); itemIndex <= als.Data.MaxItemId(); itemIndex++ {
			var p, c float32 = 0, 1
			if items.Contains(itemIndex) {
				p = 1
				c = 1 + als.alpha
			}
			err := p - als.internalPredict(userIndex, itemIndex)
			loss += float64(c * err * err)
		}
	}
	return loss
}
