package measurement

import (
	"io"
	"sort"
	"time"

	"github.com/magiconair/properties"
	"github.com/mydb-bench/go-ycsb/pkg/prop"
	"github.com/mydb-bench/go-ycsb/pkg/util"
)

type histograms struct {
	outputStyle string

	histograms map[string]*histogram
}

func (h *histograms) Measure(op string, _ time.Time, lan time.Duration) {
	opM, ok := h.histograms[op]
	if !ok {
		opM = newHistogram()
		h.histograms[op] = opM
	}

	opM.Measure(lan)
}

func (h *histograms) rows() [][]string {
	ops := make([]string, 0, len(h.histograms))
	for op := range h.histograms {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		row := append([]string{op}, h.histograms[op].Summary()...)
		rows = append(rows, row)
	}
	return rows
}

func (h *histograms) Summary(w io.Writer) error {
	return h.Output(w)
}

func (h *histograms) Output(w io.Writer) error {
	return util.Render(w, h.outputStyle, header, h.rows())
}

// InitHistograms creates a measurer keeping one hdr histogram per operation.
func InitHistograms(p *properties.Properties) *histograms {
	return &histograms{
		outputStyle: p.GetString(prop.OutputStyle, util.OutputStylePlain),
		histograms:  make(map[string]*histogram, 16),
	}
}
