package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/fieldinspect/internal/capture"
	"github.com/vbonduro/fieldinspect/internal/domain"
	"github.com/vbonduro/fieldinspect/internal/service"
)

// Alert kinds.
const (
	KindSuccess = "success"
	KindInfo    = "info"
	KindError   = "error"
)

// Alert is the user-visible notification attached to every failed action.
type Alert struct {
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Kind    string   `json:"kind"`
	Fields  []string `json:"fields,omitempty"`
}

var permissionMessages = map[string]string{
	string(capture.PermissionCamera):       "Нужно разрешение на доступ к камере!",
	string(capture.PermissionLocation):     "Нужно разрешение на доступ к геолокации!",
	string(capture.PermissionMediaLibrary): "Нужно разрешение на доступ к галерее!",
}

// alertFor maps an error to its status code and alert.
func alertFor(err error) (int, Alert) {
	var (
		verr    *domain.ValidationError
		permErr *domain.PermissionDeniedError
		expErr  *domain.ExportError
	)
	switch {
	case errors.As(err, &verr):
		a := Alert{Title: "Ошибка", Message: "Заполни все обязательные поля.", Kind: KindError, Fields: verr.Fields}
		switch {
		case errors.Is(err, domain.ErrUnknownWorkType):
			a.Message = "Неизвестный вид работ."
		case errors.Is(err, domain.ErrResultNotAllowed):
			a.Message = "Этот результат недоступен для выбранного вида работ."
		case len(verr.Fields) == 1 && verr.Fields[0] == "name":
			a.Message = "Введите ФИО инспектора"
		case len(verr.Fields) == 1 && verr.Fields[0] == "photo":
			a.Message = "Фото не найдено."
		}
		return http.StatusUnprocessableEntity, a
	case errors.As(err, &permErr):
		msg, ok := permissionMessages[permErr.Permission]
		if !ok {
			msg = "Нет нужного разрешения."
		}
		return http.StatusForbidden, Alert{Title: "Нет доступа", Message: msg, Kind: KindError}
	case errors.Is(err, domain.ErrCaptureCancelled):
		return http.StatusOK, Alert{Title: "Съемка отменена", Message: "Фото не добавлены.", Kind: KindInfo}
	case service.Unavailable(err):
		return http.StatusServiceUnavailable, Alert{Title: "Ошибка", Message: "База данных недоступна. Попробуйте позже.", Kind: KindError}
	case errors.Is(err, domain.ErrNoEntries):
		return http.StatusConflict, Alert{Title: "Нет данных", Message: "Нет записей для отчета.", Kind: KindInfo}
	case errors.As(err, &expErr):
		return http.StatusInternalServerError, Alert{Title: "Ошибка", Message: "Не удалось создать отчет.", Kind: KindError}
	default:
		return http.StatusInternalServerError, Alert{Title: "Ошибка", Message: "Что-то пошло не так.", Kind: KindError}
	}
}

// writeError turns err into an alert response and logs anything that is not
// an expected user outcome.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, alert := alertFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Info("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]any{"alert": alert})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"alert": Alert{Title: "Ошибка", Message: message, Kind: KindError},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
