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

package similarity

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
	"github.com/juju/errors"

	"github.com/nachoft/cross-metadata-mf/base/heap"
	"github.com/nachoft/cross-metadata-mf/dataset"
)

// ItemNeighborhoods holds bounded per-item neighbor lists and their
// reverse-edge view. Both maps are built in the same pass and must be treated
// as one immutable structure afterwards.
type ItemNeighborhoods struct {
	numNeighbors int
	neighbors    map[string][]dataset.ScoredItem
	invNeighbors map[string][]dataset.ScoredItem
}

// LoadItemNeighborhoods reads directed similarity edges from a file in the
// format: itemA TAB itemB TAB score. Each source item keeps at most num
// highest-scoring neighbors. Edges with unknown items or NaN scores are
// skipped. When normalize is set, each neighbor list is scaled so its scores
// sum to 1.
func LoadItemNeighborhoods(train *dataset.Dataset, num int, path string, normalize bool) (*ItemNeighborhoods, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	filters := make(map[string]*heap.TopKFilter[string, float32])
	lineCount := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineCount++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, errors.NotValidf("line %d in %s", lineCount, path)
		}
		itemA, itemB := fields[0], fields[1]
		value, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return nil, errors.NotValidf("score at line %d in %s", lineCount, path)
		}
		score := float32(value)
		if !train.ContainsItem(itemA) || !train.ContainsItem(itemB) || math32.IsNaN(score) {
			continue
		}
		filter, exist := filters[itemA]
		if !exist {
			filter = heap.NewTopKFilter[string, float32](num)
			filters[itemA] = filter
		}
		filter.Push(itemB, score)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	neighborhoods := &ItemNeighborhoods{
		numNeighbors: num,
		neighbors:    make(map[string][]dataset.ScoredItem, len(filters)),
		invNeighbors: make(map[string][]dataset.ScoredItem),
	}
	for item, filter := range filters {
		names, scores := filter.PopAll()
		if normalize {
			var sum float32
			for _, score := range scores {
				sum += score
			}
			for i := range scores {
				scores[i] /= sum
			}
		}
		neighbors := make([]dataset.ScoredItem, len(names))
		for i := range names {
			neighbors[i] = dataset.ScoredItem{Id: names[i], Score: scores[i]}
			neighborhoods.invNeighbors[names[i]] = append(neighborhoods.invNeighbors[names[i]],
				dataset.ScoredItem{Id: item, Score: scores[i]})
		}
		neighborhoods.neighbors[item] = neighbors
	}
	return neighborhoods, nil
}

// Neighbors returns the bounded neighbor list of an item, or nil when the
// item has no neighbors, e.g. when all of its similarities were NaN.
func (n *ItemNeighborhoods) Neighbors(item string) []dataset.ScoredItem {
	return n.neighbors[item]
}

// InvNeighbors returns the items whose neighbor lists contain the given item,
// or nil.
func (n *ItemNeighborhoods) InvNeighbors(item string) []dataset.ScoredItem {
	return n.invNeighbors[item]
}
