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

import "math/rand"

type discretePair struct {
	weight float64
	value  int64
}

// Discrete chooses from a discrete set of values according to their weights.
// All values must be added before the generator is shared between workers.
type Discrete struct {
	Number
	values []discretePair
	sum    float64
}

// NewDiscrete creates the generator.
func NewDiscrete() *Discrete {
	return &Discrete{}
}

// Add adds a value with weight.
func (d *Discrete) Add(weight float64, value int64) {
	d.values = append(d.values, discretePair{weight: weight, value: value})
	d.sum += weight
}

// Next implements the Generator Next interface.
func (d *Discrete) Next(r *rand.Rand) int64 {
	val := r.Float64() * d.sum
	for _, p := range d.values {
		if val < p.weight {
			d.SetLastValue(p.value)
			return p.value
		}
		val -= p.weight
	}

	// rounding can leave val just above the last weight
	last := d.values[len(d.values)-1].value
	d.SetLastValue(last)
	return last
}
