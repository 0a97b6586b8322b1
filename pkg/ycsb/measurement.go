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

package ycsb

import (
	"io"
	"time"
)

// Measurer collects per-operation latencies. Operation names are free form,
// failed calls are recorded under "<OP>_<STATUS>" and transactions under
// TRANSACTION and INTENDED_TRANSACTION. Callers serialize access.
type Measurer interface {
	Measure(op string, start time.Time, latency time.Duration)

	// Summary writes the running totals, called periodically during a run.
	Summary(w io.Writer) error

	// Output writes the final report once the run is over.
	Output(w io.Writer) error
}
