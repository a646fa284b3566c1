package controllers

import (
	"net/http"
	"strings"

	"github.com/kodacard/kodacard-backend/api/middleware"
	"github.com/kodacard/kodacard-backend/api/responses"
	"github.com/kodacard/kodacard-backend/api/validators"
	"github.com/kodacard/kodacard-backend/internal/activitylog"
	pkgerrors "github.com/kodacard/kodacard-backend/pkg/errors"
	"github.com/kodacard/kodacard-backend/pkg/logger"
	"github.com/kodacard/kodacard-backend/pkg/pagination"
)

// ClientEventIngest accepts frontend-emitted events (shares, QR scans, vCard
// downloads) into the audit trail.
func ClientEventIngest(svc activitylog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity log service unavailable"))
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		if actorID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var body activitylog.ClientEventRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.IngestClientEvent(r.Context(), actorID, body, clientIPOf(r), r.UserAgent()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	}
}

// AdminActivityList pages the audit trail with optional user and path filters.
func AdminActivityList(svc activitylog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity log service unavailable"))
			return
		}

		var filters activitylog.ListFilters

		userID, err := validators.ParseQueryUint64(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.UserID = userID
		filters.Path = strings.TrimSpace(r.URL.Query().Get("path"))

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, pagination.MaxOffset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page := pagination.Normalize(limit, offset)
		filters.Limit = page.Limit
		filters.Offset = page.Offset

		result, err := svc.AdminList(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func clientIPOf(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndexByte(host, ':'); idx >= 0 {
		host = host[:idx]
	}
	return host
}
