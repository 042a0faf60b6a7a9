package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

// maxMultipartMemory caps the in-memory part of an edit or manual approval
// upload; larger parts spill to temporary files.
const maxMultipartMemory = 32 << 20

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return io.EOF
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func pathID(r *http.Request) domain.ID {
	return domain.ID(strings.TrimSpace(chi.URLParam(r, "id")))
}

// readFiles reads every file posted under field.
func readFiles(form *multipart.Form, field string) ([]domain.FileUpload, error) {
	if form == nil {
		return nil, nil
	}
	var out []domain.FileUpload
	for _, fh := range form.File[field] {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, domain.FileUpload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return out, nil
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var authRequired *domain.ErrAuthenticationRequired
	var unauthorized *domain.ErrUnauthorized
	var forbidden *domain.ErrForbidden
	var validation *domain.ErrValidation
	var illegal *domain.ErrIllegalTransition
	var inFlight *domain.ErrInFlight
	var httpErr *domain.ErrHTTP
	var rejected *domain.ErrRejected
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &authRequired):
		logger.Warn("session ended by backend", zap.Int("status", authRequired.Status))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &unauthorized):
		logger.Debug("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		fields := validation.Fields
		if len(fields) == 0 && validation.Field != "" {
			fields = map[string]string{validation.Field: validation.Message}
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Fields: fields})
	case errors.As(err, &illegal):
		logger.Debug("illegal transition", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &inFlight):
		logger.Debug("action in flight", zap.String("request_id", string(inFlight.RequestID)))
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &httpErr):
		logger.Warn("backend error", zap.Int("status", httpErr.Status))
		msg := httpErr.Message()
		if msg == "" {
			msg = err.Error()
		}
		writeError(w, httpErr.Status, msg)
	case errors.As(err, &rejected):
		logger.Warn("backend rejected request", zap.String("message", rejected.Message))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &external):
		logger.Error("backend unreachable", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
