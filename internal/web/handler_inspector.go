package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
)

const maxInspectorNameLen = 200

type inspectorView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleListInspectors(w http.ResponseWriter, r *http.Request) {
	inspectors, err := s.inspectors.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]inspectorView, 0, len(inspectors))
	for _, in := range inspectors {
		out = append(out, inspectorView{ID: in.ID, Name: in.Name, CreatedAt: in.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"inspectors": out})
}

// handleInspectorNames feeds the inspector pickers.
func (s *Server) handleInspectorNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.inspectors.Names(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"names": names})
}

func (s *Server) handleAddInspector(w http.ResponseWriter, r *http.Request) {
	name, ok := inspectorName(r)
	if !ok {
		badRequest(w, "Некорректный запрос.")
		return
	}
	if utf8.RuneCountInString(strings.TrimSpace(name)) > maxInspectorNameLen {
		badRequest(w, "Слишком длинное имя.")
		return
	}

	id, err := s.inspectors.Add(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    id,
		"alert": Alert{Title: "Готово", Message: "Инспектор добавлен!", Kind: KindSuccess},
	})
}

func (s *Server) handleRemoveInspector(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		badRequest(w, "Некорректный идентификатор.")
		return
	}
	if err := s.inspectors.Remove(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// inspectorName accepts either a form field or a JSON body.
func inspectorName(r *http.Request) (string, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", false
		}
		return body.Name, true
	}
	return r.FormValue("name"), true
}

// parseID extracts the {id} path variable and returns it as int64.
func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
