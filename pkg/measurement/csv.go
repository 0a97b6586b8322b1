package measurement

import (
	"fmt"
	"io"
	"sort"
	"time"
)

type csventry struct {
	// start time of the operation in us from unix epoch
	startUs int64
	// latency of the operation in us
	latencyUs int64
}

type csvs struct {
	opCsv map[string][]csventry
}

// InitCSV creates a measurer keeping every raw sample.
func InitCSV() *csvs {
	return &csvs{
		opCsv: make(map[string][]csventry),
	}
}

func (c *csvs) Measure(op string, start time.Time, lan time.Duration) {
	c.opCsv[op] = append(c.opCsv[op], csventry{
		startUs:   start.UnixNano() / int64(time.Microsecond),
		latencyUs: lan.Microseconds(),
	})
}

func (c *csvs) Output(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "operation,timestamp_us,latency_us"); err != nil {
		return err
	}
	ops := make([]string, 0, len(c.opCsv))
	for op := range c.opCsv {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		for _, entry := range c.opCsv[op] {
			if _, err := fmt.Fprintf(w, "%s,%d,%d\n", op, entry.startUs, entry.latencyUs); err != nil {
				return err
			}
		}
	}
	return nil
}

// Summary is a no-op, raw samples have no running summary.
func (c *csvs) Summary(_ io.Writer) error {
	return nil
}
