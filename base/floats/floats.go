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

// Dot two vectors.
func Dot(a, b []float32) (ret float32) {
	if len(a) != len(b) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		ret += a[i] * b[i]
	}
	return
}

// MulConstAdd multiplies a vector with a const, then adds to dst: dst += a * c
func MulConstAdd(a []float32, c float32, dst []float32) {
	if len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		dst[i] += a[i] * c
	}
}

// SquaredNorm returns the squared L2 norm of a vector.
func SquaredNorm(a []float32) (ret float32) {
	for i := range a {
		ret += a[i] * a[i]
	}
	return
}

// MatSquaredNorm returns the squared Frobenius norm of a matrix.
func MatSquaredNorm(x [][]float32) (ret float32) {
	for i := range x {
		ret += SquaredNorm(x[i])
	}
	return
}

// SquaredDistance returns the squared euclidean distance between two vectors.
func SquaredDistance(a, b []float32) (ret float32) {
	if len(a) != len(b) {
		panic("floats: slice lengths do not match")
	}
	for i := range a {
		ret += (a[i] - b[i]) * (a[i] - b[i])
	}
	return
}

// Zero fills zeros in a slice of 32-bit floats.
func Zero(a []float32) {
	for i := range a {
		a[i] = 0
	}
}

// MatZero fills zeros in a matrix of 32-bit floats.
func MatZero(x [][]float32) {
	for i := range x {
		for j := range x[i] {
			x[i][j] = 0
		}
	}
}

// Gram computes the symmetric product A'A over the selected rows of A. The
// rows predicate selects which rows participate; a nil predicate selects all
// rows. Only the upper triangle is computed, the lower triangle is mirrored.
func Gram(a [][]float32, rows func(int) bool) [][]float32 {
	if len(a) == 0 {
		return nil
	}
	cols := len(a[0])
	ret := make([][]float32, cols)
	for i := range ret {
		ret[i] = make([]float32, cols)
	}
	for i := 0; i < cols; i++ {
		for j := i; j < cols; j++ {
			var x float32
			for k := 0; k < len(a); k++ {
				if rows == nil || rows(k) {
					x += a[k][i] * a[k][j]
				}
			}
			ret[i][j] = x
			ret[j][i] = x
		}
	}
	return ret
}
