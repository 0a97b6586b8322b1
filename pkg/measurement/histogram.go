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

package measurement

import (
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	"github.com/mydb-bench/go-ycsb/pkg/util"
)

type histogram struct {
	startTime time.Time
	hist      *hdrhistogram.Histogram
}

// Metric name.
const (
	ELAPSED   = "ELAPSED"
	COUNT     = "COUNT"
	QPS       = "QPS"
	AVG       = "AVG"
	MIN       = "MIN"
	MAX       = "MAX"
	PER99TH   = "PER99TH"
	PER999TH  = "PER999TH"
	PER9999TH = "PER9999TH"
)

// latencies are recorded in microseconds, up to one day
const maxLatencyUs = 24 * 60 * 60 * 1000 * 1000

func newHistogram() *histogram {
	return &histogram{
		startTime: time.Now(),
		hist:      hdrhistogram.New(1, maxLatencyUs, 3),
	}
}

func (h *histogram) Measure(latency time.Duration) {
	us := latency.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}
	h.hist.RecordValue(us)
}

func (h *histogram) Summary() []string {
	res := h.getInfo()

	return []string{
		util.FloatToOneString(res[ELAPSED]),
		util.IntToString(res[COUNT]),
		util.FloatToOneString(res[QPS]),
		util.IntToString(res[AVG]),
		util.IntToString(res[MIN]),
		util.IntToString(res[MAX]),
		util.IntToString(res[PER99TH]),
		util.IntToString(res[PER999TH]),
		util.IntToString(res[PER9999TH]),
	}
}

func (h *histogram) getInfo() map[string]interface{} {
	count := h.hist.TotalCount()
	elapsed := time.Since(h.startTime).Seconds()

	return map[string]interface{}{
		ELAPSED:   elapsed,
		COUNT:     count,
		QPS:       float64(count) / elapsed,
		AVG:       int64(h.hist.Mean()),
		MIN:       h.hist.Min(),
		MAX:       h.hist.Max(),
		PER99TH:   h.hist.ValueAtQuantile(99),
		PER999TH:  h.hist.ValueAtQuantile(99.9),
		PER9999TH: h.hist.ValueAtQuantile(99.99),
	}
}
