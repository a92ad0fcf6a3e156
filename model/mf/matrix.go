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
	"math"

	"github.com/juju/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/nachoft/cross-metadata-mf/base/floats"
)

// computeG builds the eigenvector matrix G of A0 = Q'Q + reg*I such that
// G'G == A0. Rows of G encode the fixed all-negative block plus the ridge as
// synthetic training points for the RR1 solver: row k is sqrt(lambda_k) times
// the k-th eigenvector.
func computeG(q [][]float32, reg float32) ([][]float32, error) {
	a0 := floats.Gram(q, nil)
	k := len(a0)
	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			value := float64(a0[i][j])
			if i == j {
				value += float64(reg)
			}
			sym.SetSym(i, j, value)
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, errors.New("mf: eigendecomposition failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)
	g := make([][]float32, k)
	for j := 0; j < k; j++ {
		// A0 is positive semi-definite, clamp the rounding of near-zero
		// eigenvalues
		value := values[j]
		if value < 0 {
			value = 0
		}
		scale := math.Sqrt(value)
		g[j] = make([]float32, k)
		for i := 0; i < k; i++ {
			g[j][i] = float32(scale * vectors.At(i, j))
		}
	}
	return g, nil
}

// solveLU solves the dense system a*w = b by LU decomposition and writes the
// solution into w. A singular system is reported as an error; it is only
// reachable when the ridge regularizer is zero.
func solveLU(a *mat.Dense, b []float64, w []float32) error {
	var lu mat.LU
	lu.Factorize(a)
	var solution mat.VecDense
	if err := lu.SolveVecTo(&solution, false, mat.NewVecDense(len(b), b)); err != nil {
		return errors.Annotate(err, "mf: singular system, use a positive regularizer")
	}
	for i := range w {
		w[i] = float32(solution.AtVec(i))
	}
	return nil
}
