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

// Package config loads run configuration for the crossrec command.
package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/spf13/viper"

	"github.com/nachoft/cross-metadata-mf/base"
	"github.com/nachoft/cross-metadata-mf/model"
)

// Config holds the tunables of a training run.
type Config struct {
	Factors    int     `mapstructure:"factors" validate:"gte=1"`
	Iterations int     `mapstructure:"iterations" validate:"gte=0"`
	Reg        float64 `mapstructure:"reg" validate:"gte=0"`
	Alpha      float64 `mapstructure:"alpha" validate:"gte=0"`
	CrossReg   float64 `mapstructure:"cross_reg" validate:"gte=0"`
	Neighbors  int     `mapstructure:"neighbors" validate:"gte=1"`
	Normalize  bool    `mapstructure:"normalize"`
	Jobs       int     `mapstructure:"jobs" validate:"gte=1"`
	Seed       int64   `mapstructure:"seed"`
	Verbose    int     `mapstructure:"verbose" validate:"gte=0"`
}

func setDefault(v *viper.Viper) {
	v.SetDefault("factors", 10)
	v.SetDefault("iterations", 15)
	v.SetDefault("reg", 0.015)
	v.SetDefault("alpha", 1.0)
	v.SetDefault("cross_reg", 0.015)
	v.SetDefault("neighbors", 10)
	v.SetDefault("normalize", false)
	v.SetDefault("jobs", 1)
	v.SetDefault("seed", int64(base.RandSeed))
	v.SetDefault("verbose", 0)
}

// LoadConfig reads the configuration from a file. An empty path yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	config := new(Config)
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Trace(err)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return config, nil
}

// Validate rejects values outside their domain.
func (config *Config) Validate() error {
	if err := validator.New().Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid configuration")
	}
	return nil
}

// Params converts the configuration into model hyper-parameters.
func (config *Config) Params() model.Params {
	return model.Params{
		model.NFactors:    config.Factors,
		model.NEpochs:     config.Iterations,
		model.Reg:         float32(config.Reg),
		model.Alpha:       float32(config.Alpha),
		model.CrossReg:    float32(config.CrossReg),
		model.RandomState: config.Seed,
	}
}
