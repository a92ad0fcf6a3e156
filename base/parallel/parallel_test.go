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

package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestParallel(t *testing.T) {
	var count int64
	err := Parallel(100, 4, func(workerId, jobId int) error {
		assert.Less(t, workerId, 4)
		atomic.AddInt64(&count, 1)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(100), count)
}

func TestParallelSequential(t *testing.T) {
	jobs := make([]int, 0, 10)
	err := Parallel(10, 1, func(workerId, jobId int) error {
		assert.Zero(t, workerId)
		jobs = append(jobs, jobId)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, jobs)
}

func TestParallelError(t *testing.T) {
	err := Parallel(10, 4, func(workerId, jobId int) error {
		if jobId == 5 {
			return errors.New("boom")
		}
		return nil
	})
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	a := []int{1, 2, 3, 4, 5}
	chunks := Split(a, 2)
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5}}, chunks)
	assert.Nil(t, Split([]int{}, 3))
	assert.Len(t, Split(a, 10), 5)
}
