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
)

// FileSimilarity serves pre-computed similarities loaded into memory. The
// similarities are required to be symmetrical: each pair is stored once under
// a canonical key with the smaller element first and looked up both ways.
// Unknown pairs score 0.
type FileSimilarity struct {
	similarities map[string]float32
}

// LoadFileSimilarity creates a similarity from the values in the given file.
// The format is: item1 TAB item2 TAB score. Rows with NaN scores are dropped.
func LoadFileSimilarity(path string) (*FileSimilarity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	sim := &FileSimilarity{similarities: make(map[string]float32)}
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
		value, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return nil, errors.NotValidf("score at line %d in %s", lineCount, path)
		}
		if math32.IsNaN(float32(value)) {
			continue
		}
		sim.similarities[pairKey(fields[0], fields[1])] = float32(value)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return sim, nil
}

func pairKey(first, second string) string {
	if first < second {
		return first + ":" + second
	}
	return second + ":" + first
}

func (s *FileSimilarity) Compute(first, second string) float32 {
	return s.similarities[pairKey(first, second)]
}
