package report

import (
	"fmt"
	"io"
	"time"

	"github.com/vbonduro/fieldinspect/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeText = "text/plain"

	sheetName = "Отчет"
)

// Encoder serializes entries into one report document.
type Encoder interface {
	Encode(w io.Writer, entries []domain.Entry) error
	Extension() string
	MIME() string
}

// XLSX writes a single-sheet workbook.
type XLSX struct {
	Layout Layout
}

func (x XLSX) Extension() string { return "xlsx" }
func (x XLSX) MIME() string      { return MimeXLSX }

func (x XLSX) Encode(w io.Writer, entries []domain.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	table := BuildTable(entries, x.Layout)
	header := make([]any, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Text writes one numbered line per entry:
// "<n>. <timestamp> | <address> | <work type> | <meter> | <result>".
type Text struct{}

func (Text) Extension() string { return "txt" }
func (Text) MIME() string      { return MimeText }

func (Text) Encode(w io.Writer, entries []domain.Entry) error {
	for i, e := range entries {
		sep := "\n"
		if i == len(entries)-1 {
			sep = ""
		}
		_, err := fmt.Fprintf(w, "%d. %s | %s | %s | %s | %s%s",
			i+1,
			e.Timestamp.Format(time.RFC3339),
			Address(e),
			e.WorkType,
			e.MeterNumber,
			e.WorkResult,
			sep,
		)
		if err != nil {
			return fmt.Errorf("failed to write line %d: %w", i+1, err)
		}
	}
	return nil
}

// NewEncoder returns the encoder for a REPORT_FORMAT value.
func NewEncoder(format string, layout Layout) (Encoder, error) {
	switch format {
	case "", "xlsx":
		return XLSX{Layout: layout}, nil
	case "txt", "text":
		return Text{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}
