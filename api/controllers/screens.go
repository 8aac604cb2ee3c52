package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/content-console/api/responses"
	"github.com/angelmondragon/content-console/api/validators"
	"github.com/angelmondragon/content-console/internal/screens"
	"github.com/angelmondragon/content-console/pkg/logger"
)

// ConfirmDeleteHeader must be "true" on delete requests.
const ConfirmDeleteHeader = "X-Confirm-Delete"

type screenCatalog interface {
	View(resource string) (screens.View, error)
	StatusBoard(resource string) (screens.StatusBoard, error)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListRecords re-fetches a resource from the site API and returns the rows.
func ListRecords(catalog screenCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := catalog.View(chi.URLParam(r, "resource"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithResource(ctx, view.Resource().String())
		}
		items, err := view.RefreshAll(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func DeleteRecord(catalog screenCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := catalog.View(chi.URLParam(r, "resource"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id := chi.URLParam(r, "id")
		confirmed := strings.EqualFold(strings.TrimSpace(r.Header.Get(ConfirmDeleteHeader)), "true")
		if err := view.Delete(r.Context(), id, confirmed); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": id})
	}
}

// SetRequestStatus moves a contact or quote to a new status.
func SetRequestStatus(catalog screenCatalog, resource string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := catalog.StatusBoard(resource)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body statusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id := chi.URLParam(r, "id")
		if err := board.SetStatus(r.Context(), id, body.Status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"id": id, "status": body.Status})
	}
}

func FlagRequest(catalog screenCatalog, resource string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := catalog.StatusBoard(resource)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id := chi.URLParam(r, "id")
		if err := board.Flag(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "flagged": true})
	}
}

