// Copyright 2022 cross-metadata-mf Project Authors
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
	"github.com/bits-and-blooms/bitset"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/nachoft/cross-metadata-mf/dataset"
)

// domainPartition splits the dense item index range into source and target
// domains. Source items are the training items that are not target items, so
// the two id lists are disjoint and cover all items. The partition is fixed
// for the whole training run.
type domainPartition struct {
	targetMask *bitset.BitSet
	sourceIds  []int32
	targetIds  []int32
}

func newDomainPartition(train *dataset.Dataset, targetItems mapset.Set[string]) *domainPartition {
	numItems := int(train.MaxItemId()) + 1
	partition := &domainPartition{
		targetMask: bitset.New(uint(numItems)),
	}
	for itemIndex := int32(0); itemIndex < int32(numItems); itemIndex++ {
		if targetItems.Contains(train.Item(itemIndex)) {
			partition.targetMask.Set(uint(itemIndex))
			partition.targetIds = append(partition.targetIds, itemIndex)
		} else {
			partition.sourceIds = append(partition.sourceIds, itemIndex)
		}
	}
	return partition
}

// isTarget tests domain membership by dense item index.
func (partition *domainPartition) isTarget(itemIndex int32) bool {
	return partition.targetMask.Test(uint(itemIndex))
}
