package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit prints v as JSON when --json is set and otherwise runs the human renderer.
func emit(ctx *commandContext, out io.Writer, v any, human func(io.Writer)) error {
	if ctx.jsonOutput() {
		return writeJSON(out, v)
	}
	human(out)
	return nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func formatPercent(v float64) string { return fmt.Sprintf("%.1f%%", v) }

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
