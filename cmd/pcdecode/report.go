package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wippyai/draco-decoder/pointcloud"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// fileReport is the outcome of decoding one input.
type fileReport struct {
	Result *pointcloud.Result
	Err    error
	Path   string
}

var reportHeaders = []string{"semantic", "datatype", "components", "values", "quantization", "fingerprint"}

// attributeRows renders one row per decoded attribute in request order.
func attributeRows(r *pointcloud.Result) [][]string {
	var rows [][]string
	for _, s := range r.Semantics() {
		a := r.Attributes[s]
		rows = append(rows, []string{
			string(s),
			a.Buffer.Datatype().String(),
			strconv.Itoa(a.NumComponents),
			strconv.Itoa(a.Buffer.Len()),
			describeQuantization(a.Quantization),
			fmt.Sprintf("%016x", a.Fingerprint()),
		})
	}
	return rows
}

func describeQuantization(q pointcloud.Quantization) string {
	switch q := q.(type) {
	case *pointcloud.PositionQuantization:
		return fmt.Sprintf("%d bits, min %v, range %g", q.QuantizationBits, q.MinValues, q.Range)
	case *pointcloud.NormalQuantization:
		return fmt.Sprintf("octahedron %d bits", q.QuantizationBits)
	}
	return "-"
}

// writePlain writes a tab separated report.
func writePlain(w io.Writer, reports []fileReport) error {
	for _, rep := range reports {
		if rep.Err != nil {
			if _, err := fmt.Fprintf(w, "%s\terror\t%v\n", rep.Path, rep.Err); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\tpoints\t%d\n", rep.Path, rep.Result.NumPoints); err != nil {
			return err
		}
		for _, row := range attributeRows(rep.Result) {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", rep.Path, strings.Join(row, "\t")); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeStyled writes one table per input for terminals.
func writeStyled(w io.Writer, reports []fileReport) error {
	var b strings.Builder
	for i, rep := range reports {
		if i > 0 {
			b.WriteByte('\n')
		}
		if rep.Err != nil {
			b.WriteString(titleStyle.Render(rep.Path))
			b.WriteByte('\n')
			b.WriteString(errorStyle.Render(rep.Err.Error()))
			b.WriteByte('\n')
			continue
		}

		b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %d points", rep.Path, rep.Result.NumPoints)))
		b.WriteByte('\n')

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(borderStyle).
			Headers(reportHeaders...).
			Rows(attributeRows(rep.Result)...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle.Padding(0, 1)
				}
				return cellStyle
			})
		b.WriteString(t.Render())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type jsonReport struct {
	Result *pointcloud.Result `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
	Path   string             `json:"path"`
}

// writeJSON writes all reports as a JSON array.
func writeJSON(w io.Writer, reports []fileReport) error {
	out := make([]jsonReport, len(reports))
	for i, rep := range reports {
		out[i] = jsonReport{Path: rep.Path, Result: rep.Result}
		if rep.Err != nil {
			out[i].Error = rep.Err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
