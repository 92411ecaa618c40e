package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/tendant/image-vault/pkg/imagevault"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "validation error",
			err:  &imagevault.ValidationError{Field: "filename", Reason: "required"},
			want: http.StatusBadRequest,
		},
		{
			name: "image not found",
			err:  imagevault.ErrImageNotFound,
			want: http.StatusNotFound,
		},
		{
			name: "blob not found",
			err:  imagevault.ErrBlobNotFound,
			want: http.StatusNotFound,
		},
		{
			name: "image exists",
			err:  imagevault.ErrImageExists,
			want: http.StatusConflict,
		},
		{
			name: "store rejected",
			err:  imagevault.ErrStoreRejected,
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "store unavailable",
			err:  imagevault.ErrStoreUnavailable,
			want: http.StatusServiceUnavailable,
		},
		{
			name: "wrapped blob error keeps its kind",
			err: &imagevault.ImageError{
				ImageID: uuid.New(),
				Op:      "download",
				Err:     imagevault.ErrBlobNotFound,
			},
			want: http.StatusNotFound,
		},
		{
			name: "unknown error",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
