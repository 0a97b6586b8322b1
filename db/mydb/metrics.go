package mydb

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
	"github.com/mydb-bench/go-ycsb/pkg/ycsb"
)

// observe counts one finished request in mydb_requests_total.
func observe(t RequestType, st ycsb.Status) {
	name := fmt.Sprintf(`mydb_requests_total{op=%q,status=%q}`, t.String(), st.String())
	metrics.GetOrCreateCounter(name).Inc()
}

// requestCount returns the current value of mydb_requests_total for t and st.
func requestCount(t RequestType, st ycsb.Status) uint64 {
	name := fmt.Sprintf(`mydb_requests_total{op=%q,status=%q}`, t.String(), st.String())
	return metrics.GetOrCreateCounter(name).Get()
}
