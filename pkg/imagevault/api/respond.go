package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/image-vault/pkg/imagevault"
)

// Envelope is the uniform response body. Successful responses carry Data and
// an optional Message; failures carry Error instead.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(w http.ResponseWriter, r *http.Request, status int, data interface{}, message string) {
	render.Status(r, status)
	render.JSON(w, r, Envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, statusForError(err))
	render.JSON(w, r, Envelope{
		Success: false,
		Error:   err.Error(),
	})
}

// statusForError maps library error kinds onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, imagevault.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, imagevault.ErrImageNotFound), errors.Is(err, imagevault.ErrBlobNotFound):
		return http.StatusNotFound
	case errors.Is(err, imagevault.ErrImageExists):
		return http.StatusConflict
	case errors.Is(err, imagevault.ErrStoreRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, imagevault.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
