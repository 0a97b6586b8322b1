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

import "sync/atomic"

// Number is a common generator that keeps the last generated value.
type Number struct {
	lastValue int64
}

// SetLastValue sets the last value generated.
func (n *Number) SetLastValue(value int64) {
	atomic.StoreInt64(&n.lastValue, value)
}

// Last implements the Generator Last interface.
func (n *Number) Last() int64 {
	return atomic.LoadInt64(&n.lastValue)
}
