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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/nachoft/cross-metadata-mf/base"
	"github.com/nachoft/cross-metadata-mf/base/floats"
)

func TestComputeG(t *testing.T) {
	// G'G == Q'Q + reg*I within a tight tolerance
	const k = 8
	const reg = float32(0.015)
	q := base.NewRandomGenerator(base.RandSeed).NormalMatrix(100, k, 0, 0.1)
	g, err := computeG(q, reg)
	require.NoError(t, err)
	a0 := floats.Gram(q, nil)
	gtg := floats.Gram(g, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			expected := a0[i][j]
			if i == j {
				expected += reg
			}
			assert.InDelta(t, expected, gtg[i][j], 1e-4)
		}
	}
}

func TestSolveLU(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{2, 0, 0, 4})
	w := make([]float32, 2)
	require.NoError(t, solveLU(a, []float64{2, 8}, w))
	assert.Equal(t, []float32{1, 2}, w)
}

func TestSolveLUSingular(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
	w := make([]float32, 2)
	assert.Error(t, solveLU(a, []float64{1, 1}, w))
}
