package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/table"
)

// csvFormatter formats tokens and stage errors as CSV rows
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

var csvColumns = []table.Column{
	table.NewColumn("Type", table.Field("type")),
	table.NewColumn("Value", table.Field("value")),
	table.NewColumn("Line", table.Field("line")),
	table.NewColumn("Message", table.Field("message")),
}

func (f *csvFormatter) Format(report *Report) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	// CSV headers
	headers := []string{"Kind", "Stage", "Index", "Type", "Value", "Line", "Message"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	result := report.Snapshot.Result
	if result != nil {
		grid := table.Render(result.Tokens, csvColumns, table.Plain)
		if err := writeCSVRows(writer, "token", "", grid); err != nil {
			return nil, err
		}

		for _, stage := range analysis.Stages {
			grid := table.Render(result.Errors(stage), csvColumns, table.Plain)
			if err := writeCSVRows(writer, "error", string(stage), grid); err != nil {
				return nil, err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}

func writeCSVRows(writer *csv.Writer, kind, stage string, grid table.Grid) error {
	for i, row := range grid.Rows {
		record := append([]string{kind, stage, fmt.Sprintf("%d", i+1)}, row...)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}
