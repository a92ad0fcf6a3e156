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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/nachoft/cross-metadata-mf/base/floats"
	"github.com/nachoft/cross-metadata-mf/base/log"
	"github.com/nachoft/cross-metadata-mf/base/parallel"
	"github.com/nachoft/cross-metadata-mf/dataset"
	"github.com/nachoft/cross-metadata-mf/model"
	"github.com/nachoft/cross-metadata-mf/similarity"
)

// NeighborMF is the cross-domain extension of FastALS that pulls target item
// factors toward their cross-domain neighbors:
//
//	CrossReg * sum_{t in Target} sum_{(n,s) in Neigh(t)} s * |v_t - v_n|^2
//
// The RR1 coordinate update absorbs the pull as a weighted centroid term:
//
//	w_k = (d + CrossReg * C_k) / (reg + a + CrossReg * D)
//
// with C = sum s * v_n and D = sum s. Source items use the reverse-edge view
// of the neighborhoods, so the pull is bidirectional. Items without neighbors
// degrade to the plain FastALS update.
//
// Additional hyper-parameter:
//
//	CrossReg - The cross-domain regularization strength. Default is 0.015.
type NeighborMF struct {
	FastALS
	neighborhoods *similarity.ItemNeighborhoods
	targetItems   mapset.Set[string]
	crossReg      float32
	partition     *domainPartition
}

// NewNeighborMF creates a cross-domain neighbor distance MF trainer. Source
// items are the training items that are not target items.
func NewNeighborMF(params model.Params, neighborhoods *similarity.ItemNeighborhoods, targetItems mapset.Set[string]) *NeighborMF {
	neighbor := new(NeighborMF)
	neighbor.SetParams(params)
	neighbor.neighborhoods = neighborhoods
	neighbor.targetItems = targetItems
	return neighbor
}

// SetParams sets hyper-parameters for the NeighborMF model.
func (neighbor *NeighborMF) SetParams(params model.Params) {
	neighbor.FastALS.SetParams(params)
	neighbor.crossReg = neighbor.Params.GetFloat32(model.CrossReg, 0.015)
}

// Fit trains the model. The item phase updates all source items before any
// target item: source updates read the target factors through the inverse
// neighbor map, so the order must not change.
func (neighbor *NeighborMF) Fit(ctx context.Context, train *dataset.Dataset, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if err := neighbor.validate(); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("fit neighbor mf",
		zap.Int("train_set_size", train.Count()),
		zap.Int("target_items", neighbor.targetItems.Cardinality()),
		zap.Any("params", neighbor.GetParams()),
		zap.Any("config", config))
	neighbor.Init(train)
	neighbor.growBuffers(config.Jobs)
	neighbor.partition = newDomainPartition(train, neighbor.targetItems)
	return neighbor.fitLoop(ctx, config, neighbor.userLeastSquares, neighbor.itemLeastSquares, neighbor.Loss)
}

func (neighbor *NeighborMF) itemLeastSquares(jobs int) error {
	g, err := computeG(neighbor.UserFactor, neighbor.reg)
	if err != nil {
		return errors.Trace(err)
	}
	sourceIds, targetIds := neighbor.partition.sourceIds, neighbor.partition.targetIds
	if err := parallel.Parallel(len(sourceIds), jobs, func(workerId, job int) error {
		itemIndex := sourceIds[job]
		neighbor.minimizeItem(itemIndex, neighbor.neighborhoods.InvNeighbors(neighbor.Data.Item(itemIndex)),
			g, neighbor.buffers[workerId])
		return nil
	}); err != nil {
		return err
	}
	return parallel.Parallel(len(targetIds), jobs, func(workerId, job int) error {
		itemIndex := targetIds[job]
		neighbor.minimizeItem(itemIndex, neighbor.neighborhoods.Neighbors(neighbor.Data.Item(itemIndex)),
			g, neighbor.buffers[workerId])
		return nil
	})
}

// minimizeItem runs one extended RR1 cycle for an item row. The k+N training
// points are the same as in FastALS; the neighbor edges contribute the
// centroid C and the total weight D of the pull term.
func (neighbor *NeighborMF) minimizeItem(itemIndex int32, neighbors []dataset.ScoredItem, g [][]float32, buf *rr1Buffer) {
	prefs := neighbor.Data.ItemFeedback(itemIndex)
	k := neighbor.nFactors
	n := len(prefs)
	x, y, c := buf.grow(k + n)

	for i := 0; i < k; i++ {
		x[i] = g[i]
		y[i] = 0
		c[i] = 1
	}
	j := k
	for _, u := range prefs {
		x[j] = neighbor.UserFactor[u]
		y[j] = (1 + neighbor.alpha) / neighbor.alpha
		c[j] = neighbor.alpha
		j++
	}

	centroid := buf.growCentroid(k)
	var den float32
	for _, edge := range neighbors {
		other := neighbor.Data.ItemId(edge.Id)
		den += edge.Score
		floats.MulConstAdd(neighbor.ItemFactor[other], edge.Score, centroid)
	}

	neighbor.solveExtendedRR1(neighbor.ItemFactor[itemIndex], x, y, c, buf.e[:j], centroid, den)
}

// solveExtendedRR1 is solveRR1 with the centroid pull folded into each
// coordinate update. With num = 0 and den = 0 it reduces to the plain cycle.
func (neighbor *NeighborMF) solveExtendedRR1(w []float32, x [][]float32, y, c, e []float32, num []float32, den float32) {
	for i := range x {
		e[i] = y[i] - floats.Dot(w, x[i])
	}
	for k := range w {
		for i := range x {
			e[i] += w[k] * x[i][k]
		}
		var a, d float32
		for i := range x {
			a += c[i] * x[i][k] * x[i][k]
			d += c[i] * x[i][k] * e[i]
		}
		w[k] = (d + neighbor.crossReg*num[k]) / (neighbor.reg + a + neighbor.crossReg*den)
		for i := range x {
			e[i] -= w[k] * x[i][k]
		}
	}
}

// Loss adds the neighbor distance coupling, summed over target items, to the
// implicit-feedback objective.
func (neighbor *NeighborMF) Loss() float32 {
	return neighbor.lossWith(func() float64 {
		if neighbor.crossReg <= 0 {
			return 0
		}
		var distReg float64
		for _, targetIndex := range neighbor.partition.targetIds {
			for _, edge := range neighbor.neighborhoods.Neighbors(neighbor.Data.Item(targetIndex)) {
				otherIndex := neighbor.Data.ItemId(edge.Id)
				distReg += float64(edge.Score *
					floats.SquaredDistance(neighbor.ItemFactor[targetIndex], neighbor.ItemFactor[otherIndex]))
			}
		}
		return float64(neighbor.crossReg) * distReg
	})
}
