// Package render writes table function results as a bordered text table,
// JSON, YAML, CSV or deterministic CBOR.
package render

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/Guliveer/sysstats/internal/tablefunc"
)

// Format selects the output encoding.
type Format string

const (
	Table Format = "table"
	JSON  Format = "json"
	YAML  Format = "yaml"
	CSV   Format = "csv"
	CBOR  Format = "cbor"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported format names.
func Formats() []string {
	return []string{string(Table), string(JSON), string(YAML), string(CSV), string(CBOR)}
}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case Table, JSON, YAML, CSV, CBOR:
		return f, nil
	}
	return "", fmt.Errorf("%w %q, supported formats: %s", ErrUnknownFormat, s, strings.Join(Formats(), ", "))
}

// cborEncMode uses Core Deterministic Encoding so identical snapshots
// encode to identical bytes.
var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("render: CBOR encoder initialization failed: " + err.Error())
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Write encodes results to w. Structured formats emit an object keyed by
// function name whose values are the typed records.
func Write(w io.Writer, format Format, results []*tablefunc.Result) error {
	switch format {
	case Table:
		return writeTables(w, results)
	case CSV:
		return writeCSV(w, results)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recordsByName(results))
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(recordsByName(results)); err != nil {
			return err
		}
		return enc.Close()
	case CBOR:
		data, err := cborEncMode.Marshal(recordsByName(results))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, string(format))
	}
}

func recordsByName(results []*tablefunc.Result) map[string]interface{} {
	out := make(map[string]interface{}, len(results))
	for _, res := range results {
		out[res.Function] = res.Records
	}
	return out
}

func writeTables(w io.Writer, results []*tablefunc.Result) error {
	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(borderStyle).
			Headers(res.ColumnNames()...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		for _, row := range res.Rows {
			t.Row(formatRow(row)...)
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(res.Function), t.Render()); err != nil {
			return err
		}
	}
	return nil
}

// writeCSV writes one header plus rows block per result, separated by a
// blank line.
func writeCSV(w io.Writer, results []*tablefunc.Result) error {
	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		cw := csv.NewWriter(w)
		if err := cw.Write(res.ColumnNames()); err != nil {
			return err
		}
		for _, row := range res.Rows {
			if err := cw.Write(formatRow(row)); err != nil {
				return err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
	}
	return nil
}

func formatRow(row []interface{}) []string {
	cells := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			cells[i] = "NULL"
			continue
		}
		cells[i] = fmt.Sprint(v)
	}
	return cells
}
