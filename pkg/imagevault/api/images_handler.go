// Package api exposes the image vault over HTTP with a uniform JSON
// envelope.
package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tendant/image-vault/pkg/imagevault"
)

// ImagesHandler handles HTTP requests for images using pkg/imagevault
type ImagesHandler struct {
	service imagevault.Service
}

// NewImagesHandler creates a new images handler
func NewImagesHandler(service imagevault.Service) *ImagesHandler {
	return &ImagesHandler{service: service}
}

// Routes returns the routes for images
func (h *ImagesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.UploadImage)
	r.Get("/", h.SearchImages)
	r.Get("/{imageID}", h.GetImage)
	r.Delete("/{imageID}", h.DeleteImage)

	return r
}

// UploadImageRequest is the request body for uploading an image. FileData
// carries the image bytes base64-encoded inside the JSON body.
type UploadImageRequest struct {
	UserID      string `json:"user_id"`
	FileName    string `json:"filename"`
	FileData    string `json:"file_data"`
	Description string `json:"description,omitempty"`
}

// ImageResponse is the response body for image metadata
type ImageResponse struct {
	ImageID         string `json:"image_id"`
	UserID          string `json:"user_id"`
	FileName        string `json:"filename"`
	ContentType     string `json:"content_type"`
	FileSize        int64  `json:"file_size"`
	UploadTimestamp int64  `json:"upload_timestamp"`
	Description     string `json:"description,omitempty"`
	DownloadURL     string `json:"download_url,omitempty"`
}

func imageResponse(image *imagevault.Image) ImageResponse {
	return ImageResponse{
		ImageID:         image.ID.String(),
		UserID:          image.OwnerID,
		FileName:        image.FileName,
		ContentType:     image.ContentType,
		FileSize:        image.FileSize,
		UploadTimestamp: image.UploadedAt,
		Description:     image.Description,
	}
}

// UploadImage stores a new image from a base64-encoded JSON body
func (h *ImagesHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	var req UploadImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, &imagevault.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		respondError(w, r, &imagevault.ValidationError{Field: "file_data", Reason: "invalid base64 encoding"})
		return
	}

	result, err := h.service.UploadImage(r.Context(), imagevault.UploadImageRequest{
		OwnerID:     req.UserID,
		FileName:    req.FileName,
		Data:        data,
		Description: req.Description,
	})
	if err != nil {
		slog.Error("Failed to upload image", "user_id", req.UserID, "filename", req.FileName, "error", err)
		respondError(w, r, err)
		return
	}

	resp := imageResponse(result.Image)
	resp.DownloadURL = result.DownloadURL

	slog.Info("Image uploaded", "image_id", resp.ImageID, "user_id", resp.UserID)
	respondOK(w, r, http.StatusCreated, resp, "Image uploaded successfully")
}

// GetImage retrieves an image by ID. Query parameters select the mode:
// presigned=true returns a time-limited URL (with optional expires seconds),
// download=true streams the raw bytes, and the default returns metadata.
func (h *ImagesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "imageID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, r, &imagevault.ValidationError{Field: "image_id", Reason: "must be a valid UUID"})
		return
	}

	req := imagevault.GetImageRequest{ID: id, Mode: imagevault.FetchMetadata}

	query := r.URL.Query()
	switch {
	case query.Get("presigned") == "true":
		req.Mode = imagevault.FetchPresigned
		// A non-numeric expiry falls back to the default downstream, the
		// same as any other out-of-range value.
		if expires, err := strconv.Atoi(query.Get("expires")); err == nil {
			req.ExpirySeconds = expires
		}
	case query.Get("download") == "true":
		req.Mode = imagevault.FetchData
	}

	result, err := h.service.GetImage(r.Context(), req)
	if err != nil {
		slog.Error("Failed to get image", "image_id", idStr, "error", err)
		respondError(w, r, err)
		return
	}

	switch req.Mode {
	case imagevault.FetchData:
		w.Header().Set("Content-Type", result.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Image.FileName))
		w.WriteHeader(http.StatusOK)
		w.Write(result.Data)

	case imagevault.FetchPresigned:
		respondOK(w, r, http.StatusOK, map[string]interface{}{
			"image_id":      result.Image.ID.String(),
			"presigned_url": result.PresignedURL,
			"expires_in":    result.ExpiresIn,
		}, "")

	default:
		respondOK(w, r, http.StatusOK, imageResponse(result.Image), "")
	}
}

// SearchImages lists images matching the query parameters: user_id scopes to
// an owner, filename and description are case-insensitive substring filters,
// and limit caps the result count.
func (h *ImagesHandler) SearchImages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := imagevault.SearchImagesRequest{
		OwnerID:           query.Get("user_id"),
		FileNameFilter:    query.Get("filename"),
		DescriptionFilter: query.Get("description"),
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, &imagevault.ValidationError{Field: "limit", Reason: "must be an integer"})
			return
		}
		req.Limit = &limit
	}

	result, err := h.service.SearchImages(r.Context(), req)
	if err != nil {
		slog.Error("Failed to search images", "user_id", req.OwnerID, "error", err)
		respondError(w, r, err)
		return
	}

	images := make([]ImageResponse, 0, len(result.Images))
	for _, image := range result.Images {
		images = append(images, imageResponse(image))
	}

	respondOK(w, r, http.StatusOK, map[string]interface{}{
		"images": images,
		"count":  result.Count,
	}, "")
}

// DeleteImage removes an image's bytes and metadata
func (h *ImagesHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "imageID")
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, r, &imagevault.ValidationError{Field: "image_id", Reason: "must be a valid UUID"})
		return
	}

	deleted, err := h.service.DeleteImage(r.Context(), id)
	if err != nil {
		slog.Error("Failed to delete image", "image_id", idStr, "error", err)
		respondError(w, r, err)
		return
	}

	slog.Info("Image deleted", "image_id", idStr)
	respondOK(w, r, http.StatusOK, imageResponse(deleted), "Image deleted successfully")
}
