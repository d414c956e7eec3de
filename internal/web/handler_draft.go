package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vbonduro/fieldinspect/internal/domain"
	"github.com/vbonduro/fieldinspect/internal/entry"
)

type optionView struct {
	Value  string `json:"value"`
	Access string `json:"access"`
}

type draftView struct {
	entry.Draft
	WorkType       string       `json:"workType"`
	WorkResult     string       `json:"workResult"`
	Access         string       `json:"access"`
	AllowedResults []optionView `json:"allowedResults"`
}

func newDraftView(d entry.Draft) draftView {
	v := draftView{
		Draft:          d,
		WorkType:       string(d.WorkType()),
		WorkResult:     string(d.WorkResult()),
		Access:         d.Access().String(),
		AllowedResults: options(d.AllowedResults()),
	}
	if v.PhotoURIs == nil {
		v.PhotoURIs = []string{}
	}
	return v
}

func options(opts []domain.ResultOption) []optionView {
	out := make([]optionView, 0, len(opts))
	for _, o := range opts {
		out = append(out, optionView{Value: string(o.Value), Access: o.Access.String()})
	}
	return out
}

// draftPatch carries the free-text form fields; nil leaves a field as is.
type draftPatch struct {
	Settlement  *string `json:"settlement"`
	Street      *string `json:"street"`
	House       *string `json:"house"`
	Apartment   *string `json:"apartment"`
	Room        *string `json:"room"`
	MeterNumber *string `json:"meterNumber"`
	WorkDate    *string `json:"workDate"`
	WorkTime    *string `json:"workTime"`
	Inspector1  *string `json:"inspector1"`
	Inspector2  *string `json:"inspector2"`
}

func (p draftPatch) apply(d *entry.Draft) error {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&d.Settlement, p.Settlement)
	set(&d.Street, p.Street)
	set(&d.House, p.House)
	set(&d.Apartment, p.Apartment)
	set(&d.Room, p.Room)
	set(&d.MeterNumber, p.MeterNumber)
	set(&d.Inspector1, p.Inspector1)
	set(&d.Inspector2, p.Inspector2)

	var invalid []string
	if p.WorkDate != nil {
		if _, err := time.Parse("02.01.2006", *p.WorkDate); err != nil {
			invalid = append(invalid, "workDate")
		}
		d.WorkDate = *p.WorkDate
	}
	if p.WorkTime != nil {
		if _, err := time.Parse("15:04", *p.WorkTime); err != nil {
			invalid = append(invalid, "workTime")
		}
		d.WorkTime = *p.WorkTime
	}
	if len(invalid) > 0 {
		return &domain.ValidationError{Fields: invalid}
	}
	return nil
}

type workTypeView struct {
	WorkType string       `json:"workType"`
	Results  []optionView `json:"results"`
}

func (s *Server) handleWorkTypes(w http.ResponseWriter, r *http.Request) {
	types := domain.WorkTypes()
	out := make([]workTypeView, 0, len(types))
	for _, t := range types {
		out = append(out, workTypeView{WorkType: string(t), Results: options(t.Results())})
	}
	writeJSON(w, http.StatusOK, map[string]any{"workTypes": out})
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"draft": newDraftView(s.inspection.Draft())})
}

func (s *Server) handlePatchDraft(w http.ResponseWriter, r *http.Request) {
	var patch draftPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		badRequest(w, "Некорректный запрос.")
		return
	}
	d, err := s.inspection.UpdateDraft(patch.apply)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": newDraftView(d)})
}

func (s *Server) handleResetDraft(w http.ResponseWriter, r *http.Request) {
	d := s.inspection.Reset(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"draft": newDraftView(d)})
}

func (s *Server) handleSetWorkType(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WorkType string `json:"workType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "Некорректный запрос.")
		return
	}
	t, ok := domain.ParseWorkType(body.WorkType)
	if !ok {
		s.writeError(w, r, &domain.ValidationError{
			Fields: []string{"workType"},
			Err:    fmt.Errorf("%w: %q", domain.ErrUnknownWorkType, body.WorkType),
		})
		return
	}
	d, err := s.inspection.SetWorkType(t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": newDraftView(d)})
}

func (s *Server) handleSetWorkResult(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WorkResult string `json:"workResult"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "Некорректный запрос.")
		return
	}
	d, err := s.inspection.SetWorkResult(domain.WorkResult(body.WorkResult))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": newDraftView(d)})
}

func (s *Server) handleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		badRequest(w, "Некорректный номер фото.")
		return
	}
	d, err := s.inspection.RemovePhoto(r.Context(), index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": newDraftView(d)})
}
