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

package util

import (
	"encoding/binary"
	"hash/fnv"
)

// Hash64 scatters n over the non-negative int64 range. Key choosers use it
// to spread hot ranks and sequential insert numbers across the key space.
// The result depends only on n, so every worker maps a rank to the same key.
func Hash64(n int64) int64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(n))
	h := fnv.New64a()
	h.Write(b[:])
	// drop the sign bit instead of taking an absolute value, which would
	// fold two inputs onto one key
	return int64(h.Sum64() & (1<<63 - 1))
}
