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
	"fmt"
	"math/rand"
	"os"
	"sync"
)

// Fatalf prints the message and exits the program.
func Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

// Fatal prints the message and exits the program.
func Fatal(args ...interface{}) {
	fmt.Fprint(os.Stderr, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

var letters = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// RandBytes fills the bytes with alphabetic characters randomly
func RandBytes(r *rand.Rand, b []byte) {
	for i := range b {
		b[i] = letters[r.Intn(len(letters))]
	}
}

// BufPool is a pool of byte slices. Callers check a buffer out with Get and
// must hand it back with Put once nothing references it any more.
type BufPool struct {
	p *sync.Pool
}

// NewBufPool creates a buffer pool whose fresh buffers have capacity size.
func NewBufPool(size int) *BufPool {
	p := &sync.Pool{
		New: func() interface{} {
			b := make([]byte, 0, size)
			return &b
		},
	}
	return &BufPool{
		p: p,
	}
}

// Get gets an empty buffer.
func (b *BufPool) Get() []byte {
	buf := b.p.Get().(*[]byte)
	return (*buf)[:0]
}

// Put returns a buffer.
func (b *BufPool) Put(buf []byte) {
	b.p.Put(&buf)
}
