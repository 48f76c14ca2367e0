package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/secosha/marketplace/api/responses"
	"github.com/secosha/marketplace/internal/media"
	pkgerrors "github.com/secosha/marketplace/pkg/errors"
	"github.com/secosha/marketplace/pkg/logger"
)

// MediaUploadImage accepts a raw image body and stores it under the caller's prefix.
func MediaUploadImage(svc media.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file name is required").
				WithDetails(map[string]string{"name": "is required"}))
			return
		}

		// one extra byte lets the service report the size violation itself
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes+1))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "image exceeds upload limit"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read upload body"))
			return
		}

		out, err := svc.UploadImage(r.Context(), userID, media.UploadInput{
			FileName:    name,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}
