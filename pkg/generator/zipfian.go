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
	"math"
	"math/rand"
)

// ZipfianConstant is the default constant for the zipfian.
const ZipfianConstant = float64(0.99)

// Zipfian produces items from [min, max] such that some items are more
// popular than others: min is the most popular, min+1 the next, and so on.
// Use ScrambledZipfian to spread the popular items over the range.
//
// Building the generator computes zeta over the whole item count, which is
// slow for hundreds of millions of items.
//
// The algorithm is from "Quickly Generating Billion-Record Synthetic
// Databases", Jim Gray et al, SIGMOD 1994.
type Zipfian struct {
	Number

	items int64
	base  int64

	theta float64
	alpha float64
	zetan float64
	eta   float64
}

// NewZipfianWithItems creates a Zipfian generator over [0, items).
func NewZipfianWithItems(items int64, zipfianConstant float64) *Zipfian {
	return NewZipfianWithRange(0, items-1, zipfianConstant)
}

// NewZipfianWithRange creates a Zipfian generator over [min, max].
func NewZipfianWithRange(min int64, max int64, zipfianConstant float64) *Zipfian {
	return NewZipfian(min, max, zipfianConstant, zeta(max-min+1, zipfianConstant))
}

// NewZipfian creates a Zipfian generator with a precomputed zetan.
func NewZipfian(min int64, max int64, zipfianConstant float64, zetan float64) *Zipfian {
	items := max - min + 1
	theta := zipfianConstant
	zeta2Theta := zeta(2, theta)

	z := &Zipfian{
		items: items,
		base:  min,
		theta: theta,
		alpha: 1.0 / (1.0 - theta),
		zetan: zetan,
	}
	z.eta = (1 - math.Pow(2.0/float64(items), 1-theta)) / (1 - zeta2Theta/zetan)
	z.SetLastValue(min)
	return z
}

func zeta(n int64, theta float64) float64 {
	sum := float64(0)
	for i := int64(0); i < n; i++ {
		sum += 1 / math.Pow(float64(i+1), theta)
	}
	return sum
}

// Next implements the Generator Next interface.
func (z *Zipfian) Next(r *rand.Rand) int64 {
	u := r.Float64()
	uz := u * z.zetan

	var ret int64
	switch {
	case uz < 1.0:
		ret = z.base
	case uz < 1.0+math.Pow(0.5, z.theta):
		ret = z.base + 1
	default:
		ret = z.base + int64(float64(z.items)*math.Pow(z.eta*u-z.eta+1, z.alpha))
	}
	z.SetLastValue(ret)
	return ret
}
