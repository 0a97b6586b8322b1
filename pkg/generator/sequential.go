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
	"sync/atomic"
)

// Sequential walks the inclusive range [lb, ub] in order and wraps around.
type Sequential struct {
	Number
	counter  int64
	lb       int64
	interval int64
}

// NewSequential creates a Sequential generator.
func NewSequential(lb int64, ub int64) *Sequential {
	return &Sequential{
		lb:       lb,
		interval: ub - lb + 1,
	}
}

// Next implements the Generator Next interface.
func (s *Sequential) Next(_ *rand.Rand) int64 {
	n := s.lb + (atomic.AddInt64(&s.counter, 1)-1)%s.interval
	s.SetLastValue(n)
	return n
}
