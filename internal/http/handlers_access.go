package httpx

import (
	"context"
	"net/http"
	"strconv"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
	apperrors "github.com/target/gatekeeper/internal/errors"
)

// AccessService administers authorization records.
type AccessService interface {
	Get(ctx context.Context, email string) (*domainaccess.Record, error)
	List(ctx context.Context, limit int) ([]domainaccess.Record, error)
	Grant(ctx context.Context, email string) (*domainaccess.Record, error)
	Revoke(ctx context.Context, email string) (*domainaccess.Record, error)
}

// AccessHandlers serves the admin API under /api/access.
type AccessHandlers struct {
	Svc AccessService
}

// List handles GET /api/access?limit=N.
func (h *AccessHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteAppError(w, apperrors.ValidationField("limit", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := h.Svc.List(r.Context(), limit)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if records == nil {
		records = []domainaccess.Record{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"records": records, "count": len(records)})
}

// Get handles GET /api/access/{email}.
func (h *AccessHandlers) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Svc.Get(r.Context(), r.PathValue("email"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

// Grant handles PUT /api/access/{email}/grant.
func (h *AccessHandlers) Grant(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.Svc.Grant)
}

// Revoke handles PUT /api/access/{email}/revoke.
func (h *AccessHandlers) Revoke(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.Svc.Revoke)
}

func (h *AccessHandlers) update(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, string) (*domainaccess.Record, error),
) {
	rec, err := op(r.Context(), r.PathValue("email"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}
