package crack

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var csvHeader = []string{"ID", "Length (mm)", "Max Width (mm)", "Classification", "X", "Y"}

// WriteCSV writes one row per crack under a header row.
func WriteCSV(w io.Writer, cracks []Crack) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, c := range cracks {
		row := []string{
			strconv.Itoa(c.ID),
			formatMM(c.LengthMM),
			formatMM(c.MaxWidthMM),
			c.Classification,
			strconv.Itoa(c.X),
			strconv.Itoa(c.Y),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write crack %d: %w", c.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary renders a short plain-text report of r for the named image.
func Summary(imageName string, r *Result) string {
	var sb strings.Builder
	sb.WriteString("Crack Detection Report\n")
	fmt.Fprintf(&sb, "Image: %s\n", imageName)
	fmt.Fprintf(&sb, "GSD: %s mm/pixel\n", strconv.FormatFloat(r.GSDmm, 'f', -1, 64))
	fmt.Fprintf(&sb, "Total Cracks: %d\n", r.Count)
	for _, c := range r.Cracks {
		fmt.Fprintf(&sb, "ID: %d | Length: %s mm | Width: %s mm | Class: %s\n",
			c.ID, formatMM(c.LengthMM), formatMM(c.MaxWidthMM), c.Classification)
	}
	return sb.String()
}

// formatMM rounds to two decimals and trims trailing zeros.
func formatMM(v float64) string {
	return strconv.FormatFloat(roundTo(v, 2), 'f', -1, 64)
}

func roundTo(v float64, places int) float64 {
	s := strconv.FormatFloat(v, 'f', places, 64)
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return v
	}
	return r
}
