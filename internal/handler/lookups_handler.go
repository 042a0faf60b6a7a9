package handler

import (
	"net/http"

	"github.com/boddenberg/shopboard-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func lookupHandler(lookups *service.LookupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/lookups/{kind}")
		defer span.End()

		kind := service.LookupKind(chi.URLParam(r, "kind"))
		span.SetAttributes(attribute.String("lookup.kind", string(kind)))

		items, err := lookups.Lookup(ctx, kind)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}
