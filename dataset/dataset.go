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

package dataset

import (
	"bufio"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// NotId represents an ID doesn't exist.
const NotId = int32(-1)

// ScoredItem is an item with a predicted preference score.
type ScoredItem struct {
	Id    string
	Score float32
}

// Dataset is the container for unary/binary feedback. Neither ratings nor
// frequencies are stored, only the (user, item) pairs for which a positive
// observation is available.
//
// Sparse user and item IDs are opaque strings; each is assigned a dense,
// contiguous, zero-based index in first-appearance order, and every indexed
// entity carries at least one observation. Factor matrices and the domain
// partition are addressed by these dense indices. Adjacency is kept by dense
// index on both sides: a pair (u, i) is in UserItems(u) iff u is in
// ItemUsers(i).
type Dataset struct {
	userNumbers map[string]int32    // sparse user ID -> dense index
	userNames   []string            // dense user index -> sparse ID
	itemNumbers map[string]int32    // sparse item ID -> dense index
	itemNames   []string            // dense item index -> sparse ID
	userItems   []mapset.Set[int32] // by user dense index
	itemUsers   []mapset.Set[int32] // by item dense index
	// insertion-ordered copies of the adjacency, so that numeric reductions
	// over a user's items or an item's users are reproducible
	userFeedback [][]int32
	itemFeedback [][]int32
	count        int
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		userNumbers: make(map[string]int32),
		itemNumbers: make(map[string]int32),
	}
}

// LoadDataset reads a unary/binary feedback dataset from a file. The file
// contains an observation per line: a user identifier, a single tab and an
// item identifier. Empty lines and lines starting with '#' are ignored.
func LoadDataset(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	dataset := NewDataset()
	lineCount := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineCount++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, errors.NotValidf("line %d in %s", lineCount, path)
		}
		dataset.AddFeedback(fields[0], fields[1])
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return dataset, nil
}

// AddFeedback inserts a positive observation, allocating the next dense index
// for the user and the item when they are new. Duplicated observations are
// collapsed.
func (d *Dataset) AddFeedback(user, item string) {
	userIndex, exist := d.userNumbers[user]
	if !exist {
		userIndex = int32(len(d.userNames))
		d.userNumbers[user] = userIndex
		d.userNames = append(d.userNames, user)
		d.userItems = append(d.userItems, mapset.NewThreadUnsafeSet[int32]())
		d.userFeedback = append(d.userFeedback, nil)
	}
	itemIndex, exist := d.itemNumbers[item]
	if !exist {
		itemIndex = int32(len(d.itemNames))
		d.itemNumbers[item] = itemIndex
		d.itemNames = append(d.itemNames, item)
		d.itemUsers = append(d.itemUsers, mapset.NewThreadUnsafeSet[int32]())
		d.itemFeedback = append(d.itemFeedback, nil)
	}
	if d.userItems[userIndex].Add(itemIndex) {
		d.itemUsers[itemIndex].Add(userIndex)
		d.userFeedback[userIndex] = append(d.userFeedback[userIndex], itemIndex)
		d.itemFeedback[itemIndex] = append(d.itemFeedback[itemIndex], userIndex)
		d.count++
	}
}

// Count returns the number of observations.
func (d *Dataset) Count() int {
	return d.count
}

// CountUsers returns the number of distinct users.
func (d *Dataset) CountUsers() int {
	return len(d.userNames)
}

// CountItems returns the number of distinct items.
func (d *Dataset) CountItems() int {
	return len(d.itemNames)
}

// MaxUserId returns the maximum dense user index, or -1 when empty.
func (d *Dataset) MaxUserId() int32 {
	return int32(len(d.userNames)) - 1
}

// MaxItemId returns the maximum dense item index, or -1 when empty.
func (d *Dataset) MaxItemId() int32 {
	return int32(len(d.itemNames)) - 1
}

// Users returns the sparse IDs of all users, by dense index.
func (d *Dataset) Users() []string {
	return d.userNames
}

// Items returns the sparse IDs of all items, by dense index.
func (d *Dataset) Items() []string {
	return d.itemNames
}

// UserId converts a sparse user ID to a dense index, or NotId.
func (d *Dataset) UserId(user string) int32 {
	if userIndex, exist := d.userNumbers[user]; exist {
		return userIndex
	}
	return NotId
}

// ItemId converts a sparse item ID to a dense index, or NotId.
func (d *Dataset) ItemId(item string) int32 {
	if itemIndex, exist := d.itemNumbers[item]; exist {
		return itemIndex
	}
	return NotId
}

// User converts a dense user index to its sparse ID.
func (d *Dataset) User(userIndex int32) string {
	return d.userNames[userIndex]
}

// Item converts a dense item index to its sparse ID.
func (d *Dataset) Item(itemIndex int32) string {
	return d.itemNames[itemIndex]
}

// UserItems returns the dense indices of the items preferred by a user.
func (d *Dataset) UserItems(userIndex int32) mapset.Set[int32] {
	return d.userItems[userIndex]
}

// ItemUsers returns the dense indices of the users that preferred an item.
func (d *Dataset) ItemUsers(itemIndex int32) mapset.Set[int32] {
	return d.itemUsers[itemIndex]
}

// UserFeedback returns the items preferred by a user in insertion order.
func (d *Dataset) UserFeedback(userIndex int32) []int32 {
	return d.userFeedback[userIndex]
}

// ItemFeedback returns the users that preferred an item in insertion order.
func (d *Dataset) ItemFeedback(itemIndex int32) []int32 {
	return d.itemFeedback[itemIndex]
}

// ContainsUser tests whether a user exists in this dataset.
func (d *Dataset) ContainsUser(user string) bool {
	_, exist := d.userNumbers[user]
	return exist
}

// ContainsItem tests whether an item exists in this dataset.
func (d *Dataset) ContainsItem(item string) bool {
	_, exist := d.itemNumbers[item]
	return exist
}

// ExistsPreference tests whether the user expressed a preference for the item.
func (d *Dataset) ExistsPreference(user, item string) bool {
	userIndex := d.UserId(user)
	itemIndex := d.ItemId(item)
	if userIndex == NotId || itemIndex == NotId {
		return false
	}
	return d.userItems[userIndex].Contains(itemIndex)
}

// Merge unions the observations of another dataset into this one. Dense
// indices are created for new users and items while walking the other
// dataset user by user in dense index order, each user's items in insertion
// order, so that merging is reproducible.
func (d *Dataset) Merge(other *Dataset) {
	for userIndex, feedback := range other.userFeedback {
		user := other.User(int32(userIndex))
		for _, itemIndex := range feedback {
			d.AddFeedback(user, other.Item(itemIndex))
		}
	}
	d.count = lo.SumBy(d.userItems, func(items mapset.Set[int32]) int {
		return items.Cardinality()
	})
}
