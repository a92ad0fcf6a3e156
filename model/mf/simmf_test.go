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
	"context"
	"os"
	"path/filepath"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nachoft/cross-metadata-mf/base/floats"
	"github.com/nachoft/cross-metadata-mf/dataset"
	"github.com/nachoft/cross-metadata-mf/model"
	"github.com/nachoft/cross-metadata-mf/similarity"
)

func writeSimFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// source items {s1,s2}, target items {t1,t2}, one user per item
func buildTwoDomains() (*dataset.Dataset, mapset.Set[string]) {
	train := buildDataset(
		[2]string{"u1", "s1"}, [2]string{"u2", "s2"},
		[2]string{"u3", "t1"}, [2]string{"u4", "t2"},
	)
	return train, mapset.NewSet[string]("t1", "t2")
}

func TestSimMF_Coupling(t *testing.T) {
	train, targetItems := buildTwoDomains()
	sim, err := similarity.LoadFileSimilarity(writeSimFile(t, "s1\tt1\t0.9\ns2\tt2\t0.9\n"))
	require.NoError(t, err)
	simmf := NewSimMF(model.Params{
		model.NFactors: 4,
		model.NEpochs:  20,
		model.CrossReg: float32(1),
	}, sim, targetItems)
	require.NoError(t, simmf.Fit(context.Background(), train, NewFitConfig()))

	s1 := simmf.ItemFactor[train.ItemId("s1")]
	t1 := simmf.ItemFactor[train.ItemId("t1")]
	t2 := simmf.ItemFactor[train.ItemId("t2")]
	assert.Greater(t, floats.Dot(s1, t1), floats.Dot(s1, t2))
}

func TestSimMF_Partition(t *testing.T) {
	train, targetItems := buildTwoDomains()
	sim, err := similarity.LoadFileSimilarity(writeSimFile(t, "s1\tt1\t0.9\n"))
	require.NoError(t, err)
	simmf := NewSimMF(model.Params{model.NEpochs: 1}, sim, targetItems)
	require.NoError(t, simmf.Fit(context.Background(), train, NewFitConfig()))
	// source and target ids are disjoint and cover all items
	assert.Len(t, simmf.partition.sourceIds, 2)
	assert.Len(t, simmf.partition.targetIds, 2)
	for _, itemIndex := range simmf.partition.sourceIds {
		assert.False(t, simmf.partition.isTarget(itemIndex))
	}
	for _, itemIndex := range simmf.partition.targetIds {
		assert.True(t, simmf.partition.isTarget(itemIndex))
	}
}

func TestSimMF_Determinism(t *testing.T) {
	train, targetItems := buildTwoDomains()
	sim, err := similarity.LoadFileSimilarity(writeSimFile(t, "s1\tt1\t0.9\n"))
	require.NoError(t, err)
	params := model.Params{model.NFactors: 4, model.NEpochs: 5}
	first := NewSimMF(params, sim, targetItems)
	require.NoError(t, first.Fit(context.Background(), train, NewFitConfig()))
	second := NewSimMF(params, sim, targetItems)
	require.NoError(t, second.Fit(context.Background(), train, NewFitConfig()))
	assert.Equal(t, first.ItemFactor, second.ItemFactor)
}

func TestSimMF_Loss(t *testing.T) {
	train, targetItems := buildTwoDomains()
	sim, err := similarity.LoadFileSimilarity(writeSimFile(t, "s1\tt1\t0.9\n"))
	require.NoError(t, err)
	simmf := NewSimMF(model.Params{model.NFactors: 4, model.NEpochs: 5}, sim, targetItems)
	require.NoError(t, simmf.Fit(context.Background(), train, NewFitConfig()))
	assert.Positive(t, simmf.Loss())
}
