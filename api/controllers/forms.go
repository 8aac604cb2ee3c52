package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/content-console/api/responses"
	"github.com/angelmondragon/content-console/api/validators"
	"github.com/angelmondragon/content-console/internal/assets"
	"github.com/angelmondragon/content-console/internal/forms"
	"github.com/angelmondragon/content-console/internal/screens"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
)

type editorCatalog interface {
	Editor(resource string) (screens.Editor, error)
}

type sessionStore interface {
	Get(id string) (forms.Session, error)
	Close(id string) error
}

type openFormRequest struct {
	ID string `json:"id"`
}

type fieldsRequest struct {
	Fields map[string]string `json:"fields" validate:"required"`
}

type pairsRequest struct {
	Pairs []forms.Pair `json:"pairs" validate:"required,dive"`
}

type submitResponse struct {
	Record any            `json:"record"`
	Form   forms.Snapshot `json:"form"`
}

// OpenForm starts a create session, or an edit session when the body names a row id.
func OpenForm(catalog editorCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editor, err := catalog.Editor(chi.URLParam(r, "resource"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body openFormRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		session, err := editor.OpenSession(r.Context(), body.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithFormID(logg.WithResource(r.Context(), session.Resource().String()), session.ID())
			logg.Info(ctx, "form opened")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session.Snapshot())
	}
}

func GetForm(sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(w http.ResponseWriter, r *http.Request, session forms.Session) {
		responses.WriteSuccess(w, session.Snapshot())
	})
}

func PatchFormFields(sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(w http.ResponseWriter, r *http.Request, session forms.Session) {
		var body fieldsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := session.SetFields(body.Fields); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session.Snapshot())
	})
}

// StageFormAssets stages every uploaded "file" part in order. Files after the first
// rejected one are not staged.
func StageFormAssets(sessions sessionStore, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(w http.ResponseWriter, r *http.Request, session forms.Session) {
		files, err := validators.ReadStagedFiles(r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		staged := make([]assets.View, 0, len(files))
		for _, file := range files {
			view, err := session.Stage(r.Context(), file)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			staged = append(staged, view)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"staged": staged,
			"form":   session.Snapshot(),
		})
	})
}

func RemoveFormAsset(sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(w http.ResponseWriter, r *http.Request, session forms.Session) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "asset index must be an integer"))
			return
		}
		if err := session.RemoveAsset(index); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session.Snapshot())
	})
}

func PutFormPairs(sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(w http.ResponseWriter, r *http.Request, session forms.Session) {
		var body pairsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := session.SetPairs(body.Pairs); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session.Snapshot())
	})
}

// SubmitForm runs the upload-then-save transaction. The draft survives a failure so the
// same request can be retried.
func SubmitForm(sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(w http.ResponseWriter, r *http.Request, session forms.Session) {
		record, err := session.SubmitRecord(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, submitResponse{Record: record, Form: session.Snapshot()})
	})
}

func CloseForm(sessions sessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "formId")
		if err := sessions.Close(id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"closed": id})
	}
}

func withSession(sessions sessionStore, logg *logger.Logger, fn func(http.ResponseWriter, *http.Request, forms.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessions.Get(chi.URLParam(r, "formId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFormID(logg.WithResource(ctx, session.Resource().String()), session.ID())
		}
		fn(w, r.WithContext(ctx), session)
	}
}
