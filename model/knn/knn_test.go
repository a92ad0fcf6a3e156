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

package knn

import (
	"testing"

	"github.com/chewxy/math32"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"

	"github.com/nachoft/cross-metadata-mf/dataset"
	"github.com/nachoft/cross-metadata-mf/similarity"
)

func buildTrain() *dataset.Dataset {
	train := dataset.NewDataset()
	train.AddFeedback("u1", "i1")
	train.AddFeedback("u1", "i2")
	train.AddFeedback("u2", "i1")
	train.AddFeedback("u2", "i2")
	train.AddFeedback("u2", "i3")
	train.AddFeedback("u3", "i4")
	return train
}

func userJaccard(train *dataset.Dataset) similarity.Similarity {
	return similarity.NewJaccard(func(user string) mapset.Set[int32] {
		return train.UserItems(train.UserId(user))
	})
}

func itemJaccard(train *dataset.Dataset) similarity.Similarity {
	return similarity.NewJaccard(func(item string) mapset.Set[int32] {
		return train.ItemUsers(train.ItemId(item))
	})
}

func TestUserKNN(t *testing.T) {
	train := buildTrain()
	knn := NewUserKNN(train, userJaccard(train), 1)
	// u2 shares both items of u1 and likes i3
	assert.Positive(t, knn.Predict("u1", "i3"))
	// the only neighbor of u1 does not like i4
	assert.True(t, math32.IsNaN(knn.Predict("u1", "i4")))
	assert.True(t, math32.IsNaN(knn.Predict("unknown", "i1")))
}

func TestItemKNN(t *testing.T) {
	train := buildTrain()
	knn := NewItemKNN(train, itemJaccard(train))
	// i3 shares its user with i1 and i2
	assert.Positive(t, knn.Predict("u1", "i3"))
	assert.Zero(t, knn.Predict("u1", "i4"))
	assert.True(t, math32.IsNaN(knn.Predict("unknown", "i1")))
}
