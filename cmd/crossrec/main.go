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

// crossrec trains a cross-domain recommender on positive-only feedback and
// prints top-N recommendations for the users of a test set.
package main

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nachoft/cross-metadata-mf/base/log"
	"github.com/nachoft/cross-metadata-mf/config"
	"github.com/nachoft/cross-metadata-mf/dataset"
	"github.com/nachoft/cross-metadata-mf/model"
	"github.com/nachoft/cross-metadata-mf/model/knn"
	"github.com/nachoft/cross-metadata-mf/model/mf"
	"github.com/nachoft/cross-metadata-mf/similarity"
)

type runner struct {
	cfg         *config.Config
	train       *dataset.Dataset
	test        *dataset.Dataset
	targetItems mapset.Set[string]
	candidates  []string
	numRecs     int
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute command", zap.Error(err))
	}
}

var rootCommand = &cobra.Command{
	Use:   "crossrec",
	Short: "Cross-domain recommender for positive-only feedback",
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.String("source", "", "path of the source domain preference file")
	flags.String("train", "", "path of the target domain preference file")
	flags.String("test", "", "path of the test preference file")
	flags.IntP("num-recs", "n", 10, "number of recommendations per user")
	flags.String("config", "", "path of the run configuration file")
	flags.Bool("debug", false, "use debug log mode")
	flags.Int("factors", 0, "number of latent factors")
	flags.Int("iterations", 0, "number of training iterations")
	flags.Float64("reg", -1, "ridge regularization strength")
	flags.Float64("alpha", -1, "implicit feedback confidence")
	flags.Float64("cross-reg", -1, "cross-domain regularization strength")
	flags.Int("neighbors", 0, "number of neighbors")
	flags.Bool("normalize", false, "normalize neighbor scores")
	flags.Int("jobs", 0, "number of parallel workers")
	flags.Int("verbose", -1, "compute the loss every verbose iterations")
	log.AddFlags(flags)
	lo.Must0(rootCommand.MarkPersistentFlagRequired("source"))
	lo.Must0(rootCommand.MarkPersistentFlagRequired("train"))
	lo.Must0(rootCommand.MarkPersistentFlagRequired("test"))

	simmfCommand.Flags().String("sim-file", "", "path of the pairwise similarity file")
	lo.Must0(simmfCommand.MarkFlagRequired("sim-file"))
	neighbormfCommand.Flags().String("sim-file", "", "path of the neighborhood similarity file")
	lo.Must0(neighbormfCommand.MarkFlagRequired("sim-file"))
	userknnCommand.Flags().Int("knn-neighbors", 50, "number of user neighbors")

	rootCommand.AddCommand(imfCommand, fastimfCommand, simmfCommand,
		neighbormfCommand, userknnCommand, itemknnCommand)
}

// loadConfig merges the configuration file with explicit flag overrides.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	path, _ := flags.GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if flags.Changed("factors") {
		cfg.Factors, _ = flags.GetInt("factors")
	}
	if flags.Changed("iterations") {
		cfg.Iterations, _ = flags.GetInt("iterations")
	}
	if flags.Changed("reg") {
		cfg.Reg, _ = flags.GetFloat64("reg")
	}
	if flags.Changed("alpha") {
		cfg.Alpha, _ = flags.GetFloat64("alpha")
	}
	if flags.Changed("cross-reg") {
		cfg.CrossReg, _ = flags.GetFloat64("cross-reg")
	}
	if flags.Changed("neighbors") {
		cfg.Neighbors, _ = flags.GetInt("neighbors")
	}
	if flags.Changed("normalize") {
		cfg.Normalize, _ = flags.GetBool("normalize")
	}
	if flags.Changed("jobs") {
		cfg.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetInt("verbose")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRunner loads the datasets and builds the cross-domain training set: the
// whole source domain joins the training data, while candidate items stay
// restricted to the target domain.
func newRunner(cmd *cobra.Command) (*runner, error) {
	flags := cmd.Flags()
	debug, _ := flags.GetBool("debug")
	log.SetLogger(flags, debug)
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	sourcePath, _ := flags.GetString("source")
	trainPath, _ := flags.GetString("train")
	testPath, _ := flags.GetString("test")
	source, err := dataset.LoadDataset(sourcePath)
	if err != nil {
		return nil, err
	}
	train, err := dataset.LoadDataset(trainPath)
	if err != nil {
		return nil, err
	}
	test, err := dataset.LoadDataset(testPath)
	if err != nil {
		return nil, err
	}
	printStats("source", source)
	printStats("target", train)
	printStats("test", test)

	// all of the source domain is training data, but candidate items are only
	// those in the target
	candidates := append([]string(nil), train.Items()...)
	targetItems := mapset.NewSet[string](candidates...)
	train.Merge(source)
	printStats("train", train)

	numRecs, _ := flags.GetInt("num-recs")
	return &runner{
		cfg:         cfg,
		train:       train,
		test:        test,
		targetItems: targetItems,
		candidates:  candidates,
		numRecs:     numRecs,
	}, nil
}

func printStats(name string, data *dataset.Dataset) {
	log.Logger().Info("dataset",
		zap.String("name", name),
		zap.Int("users", data.CountUsers()),
		zap.Int("items", data.CountItems()),
		zap.Int("likes", data.Count()))
}

// run prints recommendations for every test user as user TAB item TAB score.
func (r *runner) run(predictor model.Predictor) {
	bar := progressbar.Default(int64(r.test.CountUsers()), "recommend")
	for _, user := range r.test.Users() {
		recommended := model.Recommend(predictor, r.train, user, r.numRecs, r.candidates)
		for _, item := range recommended {
			fmt.Printf("%s\t%s\t%v\n", user, item.Id, item.Score)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
}

func (r *runner) fitConfig() *mf.FitConfig {
	return mf.NewFitConfig().SetJobs(r.cfg.Jobs).SetVerbose(r.cfg.Verbose)
}

var imfCommand = &cobra.Command{
	Use:   "imf",
	Short: "Matrix factorization for implicit feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner(cmd)
		if err != nil {
			return err
		}
		trainer := mf.NewImplicitALS(r.cfg.Params())
		if err := trainer.Fit(context.Background(), r.train, r.fitConfig()); err != nil {
			return err
		}
		r.run(trainer)
		return nil
	},
}

var fastimfCommand = &cobra.Command{
	Use:   "fastimf",
	Short: "Fast ALS implicit MF trained with RR1",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner(cmd)
		if err != nil {
			return err
		}
		trainer := mf.NewFastALS(r.cfg.Params())
		if err := trainer.Fit(context.Background(), r.train, r.fitConfig()); err != nil {
			return err
		}
		r.run(trainer)
		return nil
	},
}

var simmfCommand = &cobra.Command{
	Use:   "simmf",
	Short: "Cross-domain similarity MF",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner(cmd)
		if err != nil {
			return err
		}
		simPath, _ := cmd.Flags().GetString("sim-file")
		sim, err := similarity.LoadFileSimilarity(simPath)
		if err != nil {
			return err
		}
		trainer := mf.NewSimMF(r.cfg.Params(), sim, r.targetItems)
		if err := trainer.Fit(context.Background(), r.train, r.fitConfig()); err != nil {
			return err
		}
		r.run(trainer)
		return nil
	},
}

var neighbormfCommand = &cobra.Command{
	Use:   "neighbormf",
	Short: "Cross-domain neighbor distance MF",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner(cmd)
		if err != nil {
			return err
		}
		simPath, _ := cmd.Flags().GetString("sim-file")
		neighborhoods, err := similarity.LoadItemNeighborhoods(r.train, r.cfg.Neighbors, simPath, r.cfg.Normalize)
		if err != nil {
			return err
		}
		trainer := mf.NewNeighborMF(r.cfg.Params(), neighborhoods, r.targetItems)
		if err := trainer.Fit(context.Background(), r.train, r.fitConfig()); err != nil {
			return err
		}
		r.run(trainer)
		return nil
	},
}

var userknnCommand = &cobra.Command{
	Use:   "userknn",
	Short: "User kNN with Jaccard similarity",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner(cmd)
		if err != nil {
			return err
		}
		neighbors, _ := cmd.Flags().GetInt("knn-neighbors")
		jaccard := similarity.NewJaccard(func(user string) mapset.Set[int32] {
			return r.train.UserItems(r.train.UserId(user))
		})
		r.run(knn.NewUserKNN(r.train, jaccard, neighbors))
		return nil
	},
}

var itemknnCommand = &cobra.Command{
	Use:   "itemknn",
	Short: "Item kNN with Jaccard similarity",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newRunner(cmd)
		if err != nil {
			return err
		}
		jaccard := similarity.NewJaccard(func(item string) mapset.Set[int32] {
			return r.train.ItemUsers(r.train.ItemId(item))
		})
		r.run(knn.NewItemKNN(r.train, jaccard))
		return nil
	},
}
