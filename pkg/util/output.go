package util

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pingcap/errors"
)

// output style
const (
	OutputStylePlain = "plain"
	OutputStyleTable = "table"
	OutputStyleJson  = "json"
)

// Render writes headers and rows in the given output style. The first column
// of every row is its label.
func Render(w io.Writer, style string, headers []string, rows [][]string) error {
	switch style {
	case OutputStylePlain, "":
		RenderString(w, "%-6s - %s\n", headers, rows)
	case OutputStyleTable:
		RenderTable(w, headers, rows)
	case OutputStyleJson:
		RenderJson(w, headers, rows)
	default:
		return errors.Errorf("unsupported outputstyle: %s", style)
	}
	return nil
}

// RenderString renders each row as "label - header: value, ..." using format.
func RenderString(w io.Writer, format string, headers []string, rows [][]string) {
	var sb strings.Builder
	for _, row := range rows {
		args := make([]string, len(headers)-1)
		for i, header := range headers[1:] {
			args[i] = header + ": " + row[i+1]
		}
		fmt.Fprintf(&sb, format, row[0], strings.Join(args, ", "))
	}
	io.WriteString(w, sb.String())
}

// RenderTable renders the rows as an ascii table.
func RenderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	tb := tablewriter.NewWriter(w)
	tb.SetHeader(headers)
	tb.AppendBulk(rows)
	tb.Render()
}

// RenderJson renders the rows as a json array of header -> value objects.
func RenderJson(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	data := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		line := make(map[string]string, len(headers))
		for i, header := range headers {
			line[header] = row[i]
		}
		data = append(data, line)
	}
	out, err := json.Marshal(data)
	if err != nil {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintln(w, string(out))
}

// IntToString formats int value to string
func IntToString(i interface{}) string {
	return fmt.Sprintf("%d", i)
}

// FloatToOneString formats float into string with one digit after dot
func FloatToOneString(f interface{}) string {
	return fmt.Sprintf("%.1f", f)
}
