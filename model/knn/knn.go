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

// Package knn provides nearest-neighbor baselines for positive-only feedback.
package knn

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/nachoft/cross-metadata-mf/base/heap"
	"github.com/nachoft/cross-metadata-mf/dataset"
	"github.com/nachoft/cross-metadata-mf/similarity"
)

// UserKNN is the user-based nearest neighbors recommender for binary
// feedback. Neighborhoods are computed on demand and cached.
type UserKNN struct {
	train        *dataset.Dataset
	sim          similarity.Similarity
	numNeighbors int

	mu            sync.Mutex
	neighborhoods map[int32][]dataset.ScoredItem
}

// NewUserKNN creates a user kNN recommender using the given similarity
// function and number of neighbors.
func NewUserKNN(train *dataset.Dataset, sim similarity.Similarity, neighbors int) *UserKNN {
	return &UserKNN{
		train:         train,
		sim:           sim,
		numNeighbors:  neighbors,
		neighborhoods: make(map[int32][]dataset.ScoredItem),
	}
}

func (knn *UserKNN) neighborhood(userIndex int32) []dataset.ScoredItem {
	knn.mu.Lock()
	defer knn.mu.Unlock()
	if neighbors, exist := knn.neighborhoods[userIndex]; exist {
		return neighbors
	}
	user := knn.train.User(userIndex)
	filter := heap.NewTopKFilter[string, float32](knn.numNeighbors)
	for _, otherUser := range knn.train.Users() {
		if knn.train.UserId(otherUser) == userIndex {
			continue
		}
		filter.Push(otherUser, knn.sim.Compute(user, otherUser))
	}
	names, scores := filter.PopAll()
	neighbors := make([]dataset.ScoredItem, len(names))
	for i := range names {
		neighbors[i] = dataset.ScoredItem{Id: names[i], Score: scores[i]}
	}
	knn.neighborhoods[userIndex] = neighbors
	return neighbors
}

// Predict scores an item for a user as the similarity mass of the neighbors
// that consumed the item. NaN is returned for unknown users and when no
// neighbor consumed the item.
func (knn *UserKNN) Predict(user, item string) float32 {
	if !knn.train.ContainsUser(user) {
		return math32.NaN()
	}
	var score float32
	foundNeighbor := false
	for _, neighbor := range knn.neighborhood(knn.train.UserId(user)) {
		if knn.train.ExistsPreference(neighbor.Id, item) {
			score += neighbor.Score
			foundNeighbor = true
		}
	}
	if !foundNeighbor {
		return math32.NaN()
	}
	return score
}

// ItemKNN is the item-based nearest neighbors recommender for positive-only
// feedback.
type ItemKNN struct {
	train *dataset.Dataset
	sim   similarity.Similarity
}

// NewItemKNN creates an item kNN recommender using the given similarity
// function.
func NewItemKNN(train *dataset.Dataset, sim similarity.Similarity) *ItemKNN {
	return &ItemKNN{train: train, sim: sim}
}

// Predict scores an item for a user as the similarity mass between the item
// and the user's consumed items. NaN is returned for unknown users.
func (knn *ItemKNN) Predict(user, item string) float32 {
	userIndex := knn.train.UserId(user)
	if userIndex == dataset.NotId {
		return math32.NaN()
	}
	var score float32
	for _, itemIndex := range knn.train.UserFeedback(userIndex) {
		consumed := knn.train.Item(itemIndex)
		if consumed == item {
			continue
		}
		s := knn.sim.Compute(item, consumed)
		if math32.IsNaN(s) {
			continue
		}
		score += s
	}
	return score
}
