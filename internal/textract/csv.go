package textract

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVExtractor handles CSV exports. Each row becomes one line with cells
// joined by spaces, matching what the line-item extractors expect.
type CSVExtractor struct{}

func (e *CSVExtractor) Extract(r io.Reader, _ string) (*Result, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var lines []string
	for _, row := range rows {
		var cells []string
		for _, cell := range row {
			if c := strings.TrimSpace(cell); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " "))
		}
	}
	return &Result{Text: strings.Join(lines, "\n")}, nil
}
