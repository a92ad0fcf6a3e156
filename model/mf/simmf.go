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

// SimMF is the cross-domain extension of FastALS that couples source and
// target item factors through pairwise similarities:
//
//	CrossReg * sum_{s in Source, t in Target} (sim(s,t) - v_s'v_t)^2
//
// Each item's RR1 problem gains one training point per opposite-domain item
// whose target value is the external similarity score. The user phase is
// unchanged.
//
// Additional hyper-parameter:
//
//	CrossReg - The cross-domain regularization strength. Default is 0.015.
type SimMF struct {
	FastALS
	sim         similarity.Similarity
	targetItems mapset.Set[string]
	crossReg    float32
	partition   *domainPartition
}

// NewSimMF creates a cross-domain similarity MF trainer. Source items are the
// training items that are not target items.
func NewSimMF(params model.Params, sim similarity.Similarity, targetItems mapset.Set[string]) *SimMF {
	simmf := new(SimMF)
	simmf.SetParams(params)
	simmf.sim = sim
	simmf.targetItems = targetItems
	return simmf
}

// SetParams sets hyper-parameters for the SimMF model.
func (simmf *SimMF) SetParams(params model.Params) {
	simmf.FastALS.SetParams(params)
	simmf.crossReg = simmf.Params.GetFloat32(model.CrossReg, 0.015)
}

// Fit trains the model. The item phase updates all source items before any
// target item.
func (simmf *SimMF) Fit(ctx context.Context, train *dataset.Dataset, config *FitConfig) error {
	config = config.LoadDefaultIfNil()
	if err := simmf.validate(); err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("fit sim mf",
		zap.Int("train_set_size", train.Count()),
		zap.Int("target_items", simmf.targetItems.Cardinality()),
		zap.Any("params", simmf.GetParams()),
		zap.Any("config", config))
	simmf.Init(train)
	simmf.growBuffers(config.Jobs)
	simmf.partition = newDomainPartition(train, simmf.targetItems)
	return simmf.fitLoop(ctx, config, simmf.userLeastSquares, simmf.itemLeastSquares, simmf.Loss)
}

// itemLeastSquares overrides the FastALS item phase with two sub-phases:
// first all source items against the target side, then all target items
// against the source side.
func (simmf *SimMF) itemLeastSquares(jobs int) error {
	g, err := computeG(simmf.UserFactor, simmf.reg)
	if err != nil {
		return errors.Trace(err)
	}
	sourceIds, targetIds := simmf.partition.sourceIds, simmf.partition.targetIds
	if err := parallel.Parallel(len(sourceIds), jobs, func(workerId, job int) error {
		simmf.minimizeItem(sourceIds[job], targetIds, g, simmf.buffers[workerId])
		return nil
	}); err != nil {
		return err
	}
	return parallel.Parallel(len(targetIds), jobs, func(workerId, job int) error {
		simmf.minimizeItem(targetIds[job], sourceIds, g, simmf.buffers[workerId])
		return nil
	})
}

// minimizeItem runs one RR1 cycle over k+N+M points: the k+N points of the
// plain FastALS row update plus one similarity example per opposite-domain
// item.
func (simmf *SimMF) minimizeItem(itemIndex int32, opposite []int32, g [][]float32, buf *rr1Buffer) {
	item := simmf.Data.Item(itemIndex)
	prefs := simmf.Data.ItemFeedback(itemIndex)
	k := simmf.nFactors
	n := len(prefs)
	x, y, c := buf.grow(k + n + len(opposite))

	for i := 0; i < k; i++ {
		x[i] = g[i]
		y[i] = 0
		c[i] = 1
	}
	j := k
	for _, u := range prefs {
		x[j] = simmf.UserFactor[u]
		y[j] = (1 + simmf.alpha) / simmf.alpha
		c[j] = simmf.alpha
		j++
	}
	// cross-domain regularization examples, a similarity miss scores 0 and
	// pulls the pair's dot product toward 0
	for _, other := range opposite {
		x[j] = simmf.ItemFactor[other]
		y[j] = simmf.sim.Compute(item, simmf.Data.Item(other))
		c[j] = simmf.crossReg
		j++
	}

	simmf.solveRR1(simmf.ItemFactor[itemIndex], x, y, c, buf.e[:j])
}

// Loss adds the similarity coupling, summed over source items, to the
// implicit-feedback objective.
func (simmf *SimMF) Loss() float32 {
	return simmf.lossWith(func() float64 {
		if simmf.crossReg <= 0 {
			return 0
		}
		var simReg float64
		for _, sourceIndex := range simmf.partition.sourceIds {
			sourceItem := simmf.Data.Item(sourceIndex)
			for _, targetIndex := range simmf.partition.targetIds {
				s := simmf.sim.Compute(sourceItem, simmf.Data.Item(targetIndex))
				prod := floats.Dot(simmf.ItemFactor[sourceIndex], simmf.ItemFactor[targetIndex])
				simReg += float64((s - prod) * (s - prod))
			}
		}
		return float64(simmf.crossReg) * simReg
	})
}
