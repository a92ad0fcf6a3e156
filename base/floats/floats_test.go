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

package floats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	assert.Equal(t, float32(32), Dot(a, b))
	assert.Panics(t, func() { Dot(a, []float32{1}) })
}

func TestMulConstAdd(t *testing.T) {
	a := []float32{1, 2, 3}
	dst := []float32{10, 20, 30}
	MulConstAdd(a, 2, dst)
	assert.Equal(t, []float32{12, 24, 36}, dst)
}

func TestSquaredNorm(t *testing.T) {
	assert.Equal(t, float32(14), SquaredNorm([]float32{1, 2, 3}))
	assert.Equal(t, float32(30), MatSquaredNorm([][]float32{{1, 2, 3}, {0, 0, 4}}))
}

func TestSquaredDistance(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{2, 4, 6}
	assert.Equal(t, float32(14), SquaredDistance(a, b))
}

func TestZero(t *testing.T) {
	a := []float32{1, 2}
	Zero(a)
	assert.Equal(t, []float32{0, 0}, a)
	m := [][]float32{{1}, {2}}
	MatZero(m)
	assert.Equal(t, [][]float32{{0}, {0}}, m)
}

func TestGram(t *testing.T) {
	a := [][]float32{
		{1, 2},
		{3, 4},
		{5, 6},
	}
	g := Gram(a, nil)
	assert.Equal(t, [][]float32{{35, 44}, {44, 56}}, g)
	// symmetry is mirrored, not recomputed
	for i := range g {
		for j := range g {
			assert.Equal(t, g[i][j], g[j][i])
		}
	}
	// row mask drops the last row
	g = Gram(a, func(row int) bool { return row < 2 })
	assert.Equal(t, [][]float32{{10, 14}, {14, 20}}, g)
}
