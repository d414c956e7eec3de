package report

import (
	"strings"
	"time"

	"github.com/vbonduro/fieldinspect/internal/domain"
)

// Layout selects the report columns.
type Layout int

const (
	// LayoutWithRoom is the 14-column layout.
	LayoutWithRoom Layout = iota
	// LayoutNoRoom drops the Комната column.
	LayoutNoRoom
)

const roomColumn = "Комната"

var header = []string{
	"Населенный пункт",
	"Улица",
	"Дом",
	"Квартира",
	roomColumn,
	"Номер счетчика",
	"Дата работ",
	"Время работ",
	"Вид работ",
	"Результат работ",
	"Инспектор 1",
	"Инспектор 2",
	"Количество фото",
	"Время создания",
}

// Table is a header row followed by one row per entry. Cells are strings
// except the photo count, which stays an int so spreadsheets treat it as a
// number.
type Table struct {
	Header []string
	Rows   [][]any
}

// BuildTable flattens entries in accumulation order.
func BuildTable(entries []domain.Entry, layout Layout) Table {
	t := Table{Rows: make([][]any, 0, len(entries))}
	for _, h := range header {
		if layout == LayoutNoRoom && h == roomColumn {
			continue
		}
		t.Header = append(t.Header, h)
	}

	for _, e := range entries {
		row := []any{e.Settlement, e.Street, e.House, e.Apartment}
		if layout != LayoutNoRoom {
			row = append(row, e.Room)
		}
		row = append(row,
			e.MeterNumber,
			e.WorkDate,
			e.WorkTime,
			string(e.WorkType),
			string(e.WorkResult),
			e.Inspector1,
			e.Inspector2,
			len(e.PhotoURIs),
			e.Timestamp.Format(time.RFC3339),
		)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Address joins the non-empty address components of e.
func Address(e domain.Entry) string {
	var parts []string
	for _, p := range []string{e.Settlement, e.Street, e.House, e.Apartment, e.Room} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
