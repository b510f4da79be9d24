package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// printer writes command results as aligned tables or, with --json, as
// indented JSON.
type printer struct {
	w    io.Writer
	json bool
}

func (p *printer) value(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table prints rows under header unless JSON output is requested, in which
// case raw is encoded instead.
func (p *printer) table(raw interface{}, header []string, rows [][]string) error {
	if p.json {
		return p.value(raw)
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// fields prints label/value pairs.
func (p *printer) fields(raw interface{}, pairs ...[2]string) error {
	if p.json {
		return p.value(raw)
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	for _, pair := range pairs {
		fmt.Fprintf(tw, "%s:\t%s\n", pair[0], pair[1])
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Mon 02 Jan 2006 15:04")
}
