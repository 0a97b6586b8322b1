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

// Counter generates a sequence of integers, 0, 1, ...
// It is safe to share between workers.
type Counter struct {
	counter int64
}

// NewCounter creates the Counter generator whose first value is start.
func NewCounter(start int64) *Counter {
	return &Counter{
		counter: start,
	}
}

// Next implements the Generator Next interface.
func (c *Counter) Next(_ *rand.Rand) int64 {
	return atomic.AddInt64(&c.counter, 1) - 1
}

// Last implements the Generator Last interface.
func (c *Counter) Last() int64 {
	return atomic.LoadInt64(&c.counter) - 1
}
