// Copyright 2018 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package generator

import (
	"math/rand"

	"github.com/mydb-bench/go-ycsb/pkg/util"
)

// ScrambledZipfian is a Zipfian whose popular items are hashed over the
// whole range instead of being clustered at its start.
type ScrambledZipfian struct {
	Number
	gen       *Zipfian
	min       int64
	itemCount int64
}

// NewScrambledZipfian creates a ScrambledZipfian generator over [min, max].
func NewScrambledZipfian(min int64, max int64, zipfianConstant float64) *ScrambledZipfian {
	const (
		// zeta of usedItemCount items for the default constant, so the
		// common case does not pay for computing it.
		zetan         = float64(26.46902820178302)
		usedItemCount = int64(10000000000)
	)

	s := &ScrambledZipfian{
		min:       min,
		itemCount: max - min + 1,
	}
	if zipfianConstant == ZipfianConstant {
		s.gen = NewZipfian(0, usedItemCount, zipfianConstant, zetan)
	} else {
		s.gen = NewZipfianWithRange(0, usedItemCount, zipfianConstant)
	}
	return s
}

// Next implements the Generator Next interface.
func (s *ScrambledZipfian) Next(r *rand.Rand) int64 {
	n := s.min + util.Hash64(s.gen.Next(r))%s.itemCount
	s.SetLastValue(n)
	return n
}
