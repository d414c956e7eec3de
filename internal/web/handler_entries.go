package web

import (
	"bytes"
	"net/http"
	"time"

	"github.com/vbonduro/fieldinspect/internal/domain"
	"github.com/vbonduro/fieldinspect/internal/mapview"
)

type entryView struct {
	Settlement  string    `json:"settlement"`
	Street      string    `json:"street"`
	House       string    `json:"house"`
	Apartment   string    `json:"apartment"`
	Room        string    `json:"room"`
	MeterNumber string    `json:"meterNumber"`
	WorkDate    string    `json:"workDate"`
	WorkTime    string    `json:"workTime"`
	WorkType    string    `json:"workType"`
	WorkResult  string    `json:"workResult"`
	Access      string    `json:"access"`
	Inspector1  string    `json:"inspector1"`
	Inspector2  string    `json:"inspector2"`
	PhotoURIs   []string  `json:"photoUris"`
	Timestamp   time.Time `json:"timestamp"`
}

func newEntryView(e domain.Entry) entryView {
	photos := e.PhotoURIs
	if photos == nil {
		photos = []string{}
	}
	return entryView{
		Settlement:  e.Settlement,
		Street:      e.Street,
		House:       e.House,
		Apartment:   e.Apartment,
		Room:        e.Room,
		MeterNumber: e.MeterNumber,
		WorkDate:    e.WorkDate,
		WorkTime:    e.WorkTime,
		WorkType:    string(e.WorkType),
		WorkResult:  string(e.WorkResult),
		Access:      e.Access.String(),
		Inspector1:  e.Inspector1,
		Inspector2:  e.Inspector2,
		PhotoURIs:   photos,
		Timestamp:   e.Timestamp,
	}
}

func (s *Server) handleSubmitEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.inspection.Submit()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"entry": newEntryView(e),
		"draft": newDraftView(s.inspection.Draft()),
		"alert": Alert{Title: "Готово", Message: "Запись сохранена!", Kind: KindSuccess},
	})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries := s.inspection.Entries()
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, newEntryView(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := s.inspection.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":      res.Path,
		"mime":      res.MIME,
		"rows":      res.Rows,
		"sharedUrl": res.SharedURL,
		"alert":     Alert{Title: "Готово", Message: "Отчет создан.", Kind: KindSuccess},
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	markers, err := s.visualizer.Collect(r.Context())
	if err != nil {
		s.logger.Error("map collection failed", "error", err)
		markers = nil
	}

	var buf bytes.Buffer
	if err := mapview.Render(&buf, markers); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("write map failed", "error", err)
	}
}
