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
	"bufio"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
	"github.com/pingcap/errors"
)

var header = []string{"Operation", "Takes(s)", "Count", "OPS", "Avg(us)", "Min(us)", "Max(us)", "99th(us)", "99.9th(us)", "99.99th(us)"}

type measurement struct {
	sync.RWMutex

	outFile string

	measurer ycsb.Measurer
}

func (m *measurement) measure(op string, start time.Time, lan time.Duration) {
	m.Lock()
	m.measurer.Measure(op, start, lan)
	m.Unlock()
}

func (m *measurement) output() error {
	m.RLock()
	defer m.RUnlock()

	var out io.Writer = os.Stdout
	if m.outFile != "" {
		f, err := os.Create(m.outFile)
		if err != nil {
			return errors.Annotatef(err, "create measurement output %s", m.outFile)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	if err := m.measurer.Output(w); err != nil {
		return errors.Annotate(err, "write measurement output")
	}
	return errors.Trace(w.Flush())
}

func (m *measurement) summary(w io.Writer) error {
	m.RLock()
	defer m.RUnlock()
	return m.measurer.Summary(w)
}

// NewMeasurer creates the measurer selected by the measurementtype property.
func NewMeasurer(p *properties.Properties) (ycsb.Measurer, error) {
	measurementType := p.GetString(prop.MeasurementType, prop.MeasurementTypeDefault)
	switch measurementType {
	case "histogram":
		return InitHistograms(p), nil
	case "raw", "csv":
		return InitCSV(), nil
	default:
		return nil, errors.Errorf("unsupported measurement type: %s", measurementType)
	}
}

// InitMeasure initializes the global measurement.
func InitMeasure(p *properties.Properties) error {
	measurer, err := NewMeasurer(p)
	if err != nil {
		return err
	}
	globalMeasure = &measurement{
		outFile:  p.GetString(prop.MeasurementRawOutputFile, ""),
		measurer: measurer,
	}
	EnableWarmUp(p.GetInt64(prop.WarmUpTime, 0) > 0)
	return nil
}

// Output prints the complete measurements.
func Output() error {
	if globalMeasure == nil {
		return nil
	}
	return globalMeasure.output()
}

// Summary prints the measurement summary.
func Summary() {
	if globalMeasure == nil {
		return
	}
	globalMeasure.summary(os.Stdout)
}

// EnableWarmUp sets whether to enable warm-up.
func EnableWarmUp(b bool) {
	if b {
		atomic.StoreInt32(&warmUp, 1)
	} else {
		atomic.StoreInt32(&warmUp, 0)
	}
}

// IsWarmUpFinished returns whether warm-up is finished or not.
func IsWarmUpFinished() bool {
	return atomic.LoadInt32(&warmUp) == 0
}

// Measure measures the operation.
func Measure(op string, start time.Time, lan time.Duration) {
	if globalMeasure != nil && IsWarmUpFinished() {
		globalMeasure.measure(op, start, lan)
	}
}

var globalMeasure *measurement
var warmUp int32 // use as bool, 1 means in warmup progress, 0 means warmup finished.
