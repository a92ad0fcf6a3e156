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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nachoft/cross-metadata-mf/model"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Factors)
	assert.Equal(t, 15, cfg.Iterations)
	assert.Equal(t, 0.015, cfg.Reg)
	assert.Equal(t, 1.0, cfg.Alpha)
	assert.Equal(t, 1, cfg.Jobs)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("factors: 32\nreg: 0.1\njobs: 4\n"), 0644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Factors)
	assert.Equal(t, 0.1, cfg.Reg)
	assert.Equal(t, 4, cfg.Jobs)
	// untouched keys keep their defaults
	assert.Equal(t, 15, cfg.Iterations)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("factors: 0\n"), 0644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigParams(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	params := cfg.Params()
	assert.Equal(t, 10, params.GetInt(model.NFactors, 0))
	assert.Equal(t, float32(0.015), params.GetFloat32(model.Reg, 0))
	assert.NoError(t, params.Validate())
}
