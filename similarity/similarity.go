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

// Package similarity provides the similarity oracles consumed by the
// cross-domain trainers and the kNN baselines.
package similarity

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Similarity computes the similarity score between two elements (users or
// items). Implementations are symmetric: Compute(a, b) == Compute(b, a).
type Similarity interface {
	Compute(first, second string) float32
}

// Jaccard computes similarities with Jaccard's coefficient over the element
// sets returned by the accessor, e.g. the items of a user or the users of an
// item.
type Jaccard struct {
	sets func(string) mapset.Set[int32]
}

// NewJaccard creates a Jaccard similarity using the given accessor to
// retrieve the set of elements for each user/item.
func NewJaccard(sets func(string) mapset.Set[int32]) *Jaccard {
	return &Jaccard{sets: sets}
}

func (j *Jaccard) Compute(first, second string) float32 {
	setA := j.sets(first)
	setB := j.sets(second)
	small, large := setA, setB
	if small.Cardinality() > large.Cardinality() {
		small, large = large, small
	}
	intersection := 0
	small.Each(func(e int32) bool {
		if large.Contains(e) {
			intersection++
		}
		return false
	})
	union := setA.Cardinality() + setB.Cardinality() - intersection
	// 0/0 for two empty sets yields NaN, which downstream reads as "no signal"
	return float32(intersection) / float32(union)
}
