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
	"fmt"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nachoft/cross-metadata-mf/dataset"
	"github.com/nachoft/cross-metadata-mf/model"
)

func buildDataset(pairs ...[2]string) *dataset.Dataset {
	data := dataset.NewDataset()
	for _, pair := range pairs {
		data.AddFeedback(pair[0], pair[1])
	}
	return data
}

// two disjoint user groups: {u1,u2} like {i1,i2}, {u3,u4} like {i3,i4}
func buildDisjointGroups() *dataset.Dataset {
	return buildDataset(
		[2]string{"u1", "i1"}, [2]string{"u1", "i2"},
		[2]string{"u2", "i1"}, [2]string{"u2", "i2"},
		[2]string{"u3", "i3"}, [2]string{"u3", "i4"},
		[2]string{"u4", "i3"}, [2]string{"u4", "i4"},
	)
}

func TestImplicitALS_SingleUserItem(t *testing.T) {
	train := buildDataset([2]string{"u1", "i1"})
	als := NewImplicitALS(model.Params{
		model.NFactors: 2,
		model.NEpochs:  5,
		model.Reg:      0.015,
		model.Alpha:    1,
	})
	require.NoError(t, als.Fit(context.Background(), train, NewFitConfig()))
	assert.Positive(t, als.Predict("u1", "i1"))
	assert.True(t, math32.IsNaN(als.Predict("u1", "i2")))
	assert.True(t, math32.IsNaN(als.Predict("u2", "i1")))
}

func TestImplicitALS_Shape(t *testing.T) {
	train := buildDisjointGroups()
	als := NewImplicitALS(model.Params{model.NFactors: 3, model.NEpochs: 1})
	require.NoError(t, als.Fit(context.Background(), train, NewFitConfig()))
	assert.Len(t, als.UserFactor, int(train.MaxUserId())+1)
	assert.Len(t, als.ItemFactor, int(train.MaxItemId())+1)
	for _, row := range als.UserFactor {
		assert.Len(t, row, 3)
	}
	for _, row := range als.ItemFactor {
		assert.Len(t, row, 3)
	}
}

func TestImplicitALS_Determinism(t *testing.T) {
	train := buildDisjointGroups()
	params := model.Params{model.NFactors: 4, model.NEpochs: 3}
	first := NewImplicitALS(params)
	require.NoError(t, first.Fit(context.Background(), train, NewFitConfig()))
	second := NewImplicitALS(params)
	require.NoError(t, second.Fit(context.Background(), train, NewFitConfig()))
	assert.Equal(t, first.UserFactor, second.UserFactor)
	assert.Equal(t, first.ItemFactor, second.ItemFactor)
}

func TestImplicitALS_PredictConsistency(t *testing.T) {
	train := buildDisjointGroups()
	als := NewImplicitALS(model.Params{model.NFactors: 4, model.NEpochs: 2})
	require.NoError(t, als.Fit(context.Background(), train, NewFitConfig()))
	for _, user := range train.Users() {
		for _, item := range train.Items() {
			expected := als.internalPredict(train.UserId(user), train.ItemId(item))
			assert.Equal(t, expected, als.Predict(user, item))
		}
	}
	assert.True(t, math32.IsNaN(als.Predict("u1", "unknown")))
}

// the objective is non-increasing across iterations under exact solves
func TestImplicitALS_LossMonotonic(t *testing.T) {
	data := dataset.NewDataset()
	for u := 0; u < 20; u++ {
		for i := 0; i < 20; i++ {
			if (u+i)%3 == 0 || u == i {
				data.AddFeedback(fmt.Sprintf("u%d", u), fmt.Sprintf("i%d", i))
			}
		}
	}
	losses := make([]float32, 0, 5)
	for epochs := 1; epochs <= 5; epochs++ {
		als := NewImplicitALS(model.Params{model.NFactors: 8, model.NEpochs: epochs})
		require.NoError(t, als.Fit(context.Background(), data, NewFitConfig()))
		losses = append(losses, als.Loss())
	}
	for i := 1; i < len(losses); i++ {
		assert.LessOrEqual(t, losses[i], losses[i-1]*(1+1e-3))
	}
}

func TestImplicitALS_SingularFailsFast(t *testing.T) {
	// with reg = 0 and fewer items than factors the normal equations are
	// rank-deficient
	train := buildDataset([2]string{"u1", "i1"})
	als := NewImplicitALS(model.Params{
		model.NFactors: 8,
		model.NEpochs:  1,
		model.Reg:      float32(0),
	})
	assert.Error(t, als.Fit(context.Background(), train, NewFitConfig()))
}

func TestImplicitALS_InvalidParams(t *testing.T) {
	als := NewImplicitALS(model.Params{model.NFactors: 0})
	assert.Error(t, als.Fit(context.Background(), buildDisjointGroups(), NewFitConfig()))
	als = NewImplicitALS(model.Params{model.Reg: float32(-1)})
	assert.Error(t, als.Fit(context.Background(), buildDisjointGroups(), NewFitConfig()))
}
