package web

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vbonduro/fieldinspect/internal/capture"
	"github.com/vbonduro/fieldinspect/internal/domain"
	"github.com/vbonduro/fieldinspect/internal/photostore"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// isJPEG reports whether the leading bytes of an upload sniff as JPEG.
// Stored photos are always named .jpg.
func isJPEG(head []byte) bool {
	return http.DetectContentType(head) == "image/jpeg"
}

// uploadShot is a photo received in a multipart request.
type uploadShot struct {
	fh *multipart.FileHeader
}

func (u uploadShot) Open() (io.ReadCloser, error) { return u.fh.Open() }

// uploadCamera hands over the photos the client already took. No files means
// the user backed out of the camera.
type uploadCamera []capture.Shot

func (c uploadCamera) Capture(context.Context) ([]capture.Shot, error) {
	if len(c) == 0 {
		return nil, domain.ErrCaptureCancelled
	}
	return c, nil
}

// uploadDevices builds the capture capabilities for one upload. The client
// grants camera and library access by uploading; location counts as refused
// when it sent no coordinates.
func uploadDevices(form *multipart.Form, shots []capture.Shot) (capture.Devices, error) {
	dev := capture.Devices{
		Permissions: capture.Granted{},
		Camera:      uploadCamera(shots),
	}

	lat, lon := formValue(form, "lat"), formValue(form, "lon")
	if lat == "" || lon == "" {
		dev.Permissions = capture.Granted{Denied: []capture.Permission{capture.PermissionLocation}}
		dev.Locator = capture.FixedLocator{}
		return dev, nil
	}

	var invalid []string
	loc := domain.Location{}
	var err error
	if loc.Latitude, err = strconv.ParseFloat(lat, 64); err != nil || loc.Latitude < -90 || loc.Latitude > 90 {
		invalid = append(invalid, "lat")
	}
	if loc.Longitude, err = strconv.ParseFloat(lon, 64); err != nil || loc.Longitude < -180 || loc.Longitude > 180 {
		invalid = append(invalid, "lon")
	}
	if acc := formValue(form, "accuracy"); acc != "" {
		v, err := strconv.ParseFloat(acc, 64)
		if err != nil || v < 0 {
			invalid = append(invalid, "accuracy")
		} else {
			loc.Accuracy = &v
		}
	}
	if len(invalid) > 0 {
		return dev, &domain.ValidationError{Fields: invalid}
	}
	dev.Locator = capture.FixedLocator(loc)
	return dev, nil
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func (s *Server) handleCapturePhotos(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		badRequest(w, "Не удалось прочитать фото.")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.Error("failed to remove multipart temp files", "error", err)
		}
	}()

	var shots []capture.Shot
	for _, fh := range r.MultipartForm.File["photo"] {
		ok, err := s.sniffJPEG(fh)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !ok {
			badRequest(w, "Поддерживаются только фото в формате JPEG.")
			return
		}
		shots = append(shots, uploadShot{fh: fh})
	}

	dev, err := uploadDevices(r.MultipartForm, shots)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.inspection.CapturePhotos(r.Context(), dev)
	if err != nil {
		status, alert := alertFor(err)
		if status != http.StatusOK {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, status, map[string]any{"draft": newDraftView(d), "alert": alert})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"draft": newDraftView(d)})
}

func (s *Server) sniffJPEG(fh *multipart.FileHeader) (bool, error) {
	f, err := fh.Open()
	if err != nil {
		return false, err
	}
	defer closeWithLog(f, "upload file", s.logger)
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return isJPEG(head[:n]), nil
}

// handleGetPhoto streams a stored photo or its geotag file by name.
func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	reader, mimeType, err := s.inspection.OpenPhoto(r.Context(), name)
	if err != nil {
		if !errors.Is(err, photostore.ErrNotFound) {
			s.logger.Warn("photo lookup failed", "name", name, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "name", name, "error", err)
	}
}
