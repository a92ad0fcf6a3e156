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

package model

import (
	"github.com/chewxy/math32"

	"github.com/nachoft/cross-metadata-mf/base/heap"
	"github.com/nachoft/cross-metadata-mf/dataset"
)

// Predictor scores a (user, item) pair. NaN means the pair cannot be scored.
type Predictor interface {
	Predict(user, item string) float32
}

// Recommend ranks candidate items for a user by predicted score, in
// decreasing order. Items the user interacted with in the training set and
// items without a computable prediction are discarded, so the returned list
// may be shorter than n.
func Recommend(predictor Predictor, train *dataset.Dataset, user string, n int, candidates []string) []dataset.ScoredItem {
	filter := heap.NewTopKFilter[string, float32](n)
	for _, item := range candidates {
		if train.ExistsPreference(user, item) {
			continue
		}
		score := predictor.Predict(user, item)
		if math32.IsNaN(score) {
			continue
		}
		filter.Push(item, score)
	}
	items, scores := filter.PopAll()
	recommended := make([]dataset.ScoredItem, len(items))
	for i := range items {
		recommended[i] = dataset.ScoredItem{Id: items[i], Score: scores[i]}
	}
	return recommended
}
