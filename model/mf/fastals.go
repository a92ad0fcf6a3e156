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

	"github.com/nachoft/cross-metadata-mf/base/floats"
	"github.com/nachoft/cross-metadata-mf/base/log"
	"github.com/nachoft/cross-metadata-mf/base/parallel"
	"github.com/nachoft/cross-metadata-mf/dataset"
	"github.com/nachoft/cross-metadata-mf/model"
)

// FastALS is the ALS trainer with the fast approximation to the ridge
// regression proposed in:
//
//	Pilászy, I., Zibriczky, D., Tikk, D.: Fast als-based matrix factorization
//	for explicit and implicit feedback datasets. RecSys 2010
//
// Each per-row ridge regression is rephrased as a weighted regression with
// k+N training points: k synthetic points from the eigendecomposition of
// Q'Q + reg*I encode the fixed negative-feedback block exactly, one point per
// positive interaction carries the residual-cancellation target (1+alpha)/alpha
// with weight alpha. A single RR1 cycle replaces the exact solve; the outer
// ALS iterations compensate for the lost solve accuracy.
type FastALS struct {
	ImplicitALS
	buffers []*rr1Buffer // one per worker
}

// NewFastALS creates a fast ALS trainer. Hyper-parameters are the same as in
// ImplicitALS; Alpha must be positive.
func NewFastALS(params model.Params) *FastALS {
	fast := new(FastALS)
	fast.SetParams(params)
	return fast
}

// Fit trains the model with RR1-accelerated ALS.
func (fast *FastALS) Fit(ctx context.Context, train *dataset.Dataset, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if err := fast.validate(); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("fit fast als",
		zap.Int("train_set_size", train.Count()),
		zap.Any("params", fast.GetParams()),
		zap.Any("config", config))
	fast.Init(train)
	fast.growBuffers(config.Jobs)
	return fast.fitLoop(ctx, config, fast.userLeastSquares, fast.itemLeastSquares, fast.Loss)
}

func (fast *FastALS) validate() error {
	if err := fast.Params.Validate(); err != nil {
		return errors.Trace(err)
	}
	// the positive-interaction target (1+alpha)/alpha needs alpha > 0
	if fast.alpha <= 0 {
		return errors.NotValidf("Alpha = %v", fast.alpha)
	}
	return nil
}

func (fast *FastALS) growBuffers(jobs int) {
	for len(fast.buffers) < jobs {
		fast.buffers = append(fast.buffers, new(rr1Buffer))
	}
}

func (fast *FastALS) userLeastSquares(jobs int) error {
	return fast.leastSquares(fast.UserFactor, fast.ItemFactor, fast.Data.UserFeedback, jobs)
}

func (fast *FastALS) itemLeastSquares(jobs int) error {
	return fast.leastSquares(fast.ItemFactor, fast.UserFactor, fast.Data.ItemFeedback, jobs)
}

func (fast *FastALS) leastSquares(p, q [][]float32, prefs func(int32) []int32, jobs int) error {
	g, err := computeG(q, fast.reg)
	if err != nil {
		return errors.Trace(err)
	}
	return parallel.Parallel(len(p), jobs, func(workerId, row int) error {
		fast.minimize(prefs(int32(row)), p[row], q, g, fast.buffers[workerId])
		return nil
	})
}

// minimize runs one RR1 cycle over the k+N training points of a row.
func (fast *FastALS) minimize(prefs []int32, w []float32, q, g [][]float32, buf *rr1Buffer) {
	k := fast.nFactors
	n := len(prefs)
	x, y, c := buf.grow(k + n)

	// k synthetic negative implicit feedback examples
	for i := 0; i < k; i++ {
		x[i] = g[i]
		y[i] = 0
		c[i] = 1
	}
	// negative feedback cancelation merged with the aggregation of positive
	// feedback, binary observations only
	j := k
	for _, i := range prefs {
		x[j] = q[i]
		y[j] = (1 + fast.alpha) / fast.alpha
		c[j] = fast.alpha
		j++
	}

	fast.solveRR1(w, x, y, c, buf.e[:k+n])
}

// solveRR1 performs one cycle of coordinate-wise ridge regression with
// running residuals e_i = y_i - x_i'w.
func (fast *FastALS) solveRR1(w []float32, x [][]float32, y, c, e []float32) {
	for i := range x {
		e[i] = y[i] - floats.Dot(w, x[i])
	}
	for k := range w {
		// remove the current contribution of coordinate k
		for i := range x {
			e[i] += w[k] * x[i][k]
		}
		var a, d float32
		for i := range x {
			a += c[i] * x[i][k] * x[i][k]
			d += c[i] * x[i][k] * e[i]
		}
		w[k] = d / (fast.reg + a)
		// reinsert
		for i := range x {
			e[i] -= w[k] * x[i][k]
		}
	}
}

// rr1Buffer holds the per-worker scratch of the RR1 training set. The number
// of points varies per row, so the buffer grows with a high-water mark
// instead of allocating per call. Feature rows are aliased, never copied.
type rr1Buffer struct {
	x        [][]float32
	y, c, e  []float32
	centroid []float32
}

func (buf *rr1Buffer) grow(n int) (x [][]float32, y, c []float32) {
	if cap(buf.x) < n {
		buf.x = make([][]float32, n)
		buf.y = make([]float32, n)
		buf.c = make([]float32, n)
		buf.e = make([]float32, n)
	}
	return buf.x[:n], buf.y[:n], buf.c[:n]
}

func (buf *rr1Buffer) growCentroid(k int) []float32 {
	if cap(buf.centroid) < k {
		buf.centroid = make([]float32, k)
	}
	centroid := buf.centroid[:k]
	floats.Zero(centroid)
	return centroid
}
