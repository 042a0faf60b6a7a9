package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/boddenberg/shopboard-dashboard-go/internal/domain"
	"github.com/boddenberg/shopboard-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Request boards
// ============================================================

func boardFor(boards *service.BoardSet, r *http.Request) (*service.RequestBoard, error) {
	screen, ok := domain.ParseScreen(chi.URLParam(r, "screen"))
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "screen", ID: chi.URLParam(r, "screen")}
	}
	return boards.Board(screen)
}

func listRequestsHandler(boards *service.BoardSet, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/screens/{screen}/requests")
		defer span.End()

		board, err := boardFor(boards, r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("screen", board.Screen().String()))

		if r.URL.Query().Get("reload") == "true" {
			if _, err := board.Reload(ctx); err != nil {
				handleServiceError(w, err, logger)
				return
			}
		}

		view, err := board.View(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func performActionHandler(boards *service.BoardSet, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/screens/{screen}/requests/{id}/actions/{action}")
		defer span.End()

		board, err := boardFor(boards, r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var in service.ActionInput
		if err := decodeJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		action := service.ActionName(chi.URLParam(r, "action"))
		span.SetAttributes(attribute.String("action", string(action)))

		res, err := board.Perform(ctx, pathID(r), action, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func editRequestHandler(boards *service.BoardSet, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/screens/{screen}/requests/{id}")
		defer span.End()

		board, err := boardFor(boards, r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		edit, err := parseEditForm(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := board.Edit(ctx, pathID(r), edit); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "request updated", ID: pathID(r).String()})
	}
}

// parseEditForm reads the same multipart shape the backend accepts:
// scalar fields, request_items and existing_* as JSON, and files under
// site_photos and old_board_photos.
func parseEditForm(r *http.Request) (*domain.RequestEdit, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, errors.New("invalid multipart form")
	}
	form := r.MultipartForm
	edit := &domain.RequestEdit{
		DealerID:             domain.ID(strings.TrimSpace(r.FormValue("dealer_id"))),
		WarrantyStatusID:     domain.ID(strings.TrimSpace(r.FormValue("warranty_status_id"))),
		ReasonForReplacement: r.FormValue("reason_for_replacement"),
		LastInstallationDate: r.FormValue("last_installation_date"),
	}
	if raw := r.FormValue("request_items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &edit.Items); err != nil {
			return nil, errors.New("request_items must be a JSON array")
		}
	}
	for field, dst := range map[string]*[]string{
		"existing_site_photos":      &edit.ExistingSitePhotos,
		"existing_old_board_photos": &edit.ExistingOldBoardPhotos,
	} {
		if raw := r.FormValue(field); raw != "" {
			if err := json.Unmarshal([]byte(raw), dst); err != nil {
				return nil, errors.New(field + " must be a JSON array")
			}
		}
	}

	var err error
	if edit.SitePhotos, err = readFiles(form, "site_photos"); err != nil {
		return nil, err
	}
	if edit.OldBoardPhotos, err = readFiles(form, "old_board_photos"); err != nil {
		return nil, err
	}
	return edit, nil
}

func manualApprovalHandler(boards *service.BoardSet, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/screens/{screen}/requests/{id}/manual-approval")
		defer span.End()

		board, err := boardFor(boards, r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		approval := &domain.ManualApproval{Justification: r.FormValue("justification")}
		files, err := readFiles(r.MultipartForm, "file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file")
			return
		}
		if len(files) > 0 {
			approval.File = &files[0]
		}

		if err := board.ManualApprove(ctx, pathID(r), approval); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "manual approval recorded", ID: pathID(r).String()})
	}
}

func historyHandler(boards *service.BoardSet, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/screens/{screen}/requests/{id}/history")
		defer span.End()

		board, err := boardFor(boards, r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		entries, err := board.History(ctx, pathID(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if entries == nil {
			entries = []service.HistoryEntry{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}

func matchingVendorsHandler(boards *service.BoardSet, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/screens/{screen}/requests/{id}/vendors")
		defer span.End()

		board, err := boardFor(boards, r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		vendors, err := board.MatchingVendors(ctx, pathID(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"vendors": vendors})
	}
}

func commentsHandler(boards *service.BoardSet, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/screens/{screen}/requests/{id}/comments")
		defer span.End()

		board, err := boardFor(boards, r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		thread := service.ThreadRequest
		switch t := r.URL.Query().Get("type"); t {
		case "", string(service.ThreadRequest):
		case string(service.ThreadVendor), string(service.ThreadMarketing):
			thread = service.CommentThread(t)
		default:
			writeError(w, http.StatusBadRequest, "type must be vendor or marketing")
			return
		}

		comments, err := board.Comments(ctx, pathID(r), thread)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if comments == nil {
			comments = []domain.Comment{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
	}
}

func printHandler(boards *service.BoardSet, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/screens/{screen}/requests/{id}/print")
		defer span.End()

		board, err := boardFor(boards, r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		doc, err := board.Print(ctx, pathID(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, doc)
	}
}

// ============================================================
// Bulk selection
// ============================================================

func toggleSelectionHandler(boards *service.BoardSet, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := boardFor(boards, r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		selected, err := board.ToggleSelection(pathID(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":       pathID(r),
			"selected": selected,
			"all":      board.Selected(),
		})
	}
}

func selectAllHandler(boards *service.BoardSet, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := boardFor(boards, r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		ids, err := board.SelectAll()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if ids == nil {
			ids = []domain.ID{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"all": ids})
	}
}

func sendToCEOHandler(boards *service.BoardSet, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/screens/{screen}/selection/send-to-ceo")
		defer span.End()

		board, err := boardFor(boards, r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		res, err := board.SendSelectedToCEO(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}
