package http

import (
	"fmt"
	"net/http"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/logger"
	"garment-rental-backend/internal/service"
	"garment-rental-backend/internal/storage"

	"github.com/gorilla/mux"
)

const (
	photoFormField     = "photos"
	maxPhotosPerUpload = 10
)

// PhotoUploadHandler stores uploaded photos and appends their references to the item.
type PhotoUploadHandler struct {
	media        storage.MediaStore
	coordinator  service.LifecycleCoordinator
	inventorySvc service.InventoryService
	maxBodyBytes int64
}

// NewPhotoUploadHandler creates a new upload handler. maxFileBytes bounds a
// single photo; the request body may carry up to maxPhotosPerUpload of them.
func NewPhotoUploadHandler(media storage.MediaStore, coordinator service.LifecycleCoordinator, inventorySvc service.InventoryService, maxFileBytes int64) *PhotoUploadHandler {
	return &PhotoUploadHandler{
		media:        media,
		coordinator:  coordinator,
		inventorySvc: inventorySvc,
		maxBodyBytes: maxFileBytes*maxPhotosPerUpload + 1<<20,
	}
}

// UploadPhotos handles multipart POSTs with one or more "photos" parts
func (h *PhotoUploadHandler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ctx := r.Context()

	// Fail fast on unknown items before reading the body.
	item, err := h.inventorySvc.GetItem(ctx, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, r, domain.NewValidationError(photoFormField, err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[photoFormField]
	if len(files) == 0 {
		respondError(w, r, domain.NewValidationError(photoFormField, "is required"))
		return
	}
	if len(files) > maxPhotosPerUpload {
		respondError(w, r, domain.NewValidationError(photoFormField, fmt.Sprintf("at most %d files per upload", maxPhotosPerUpload)))
		return
	}

	saved := make([]string, 0, len(files))
	cleanup := func() {
		for _, ref := range saved {
			if err := h.media.Delete(ctx, ref); err != nil {
				logger.Warn("failed to remove orphaned photo", "reference", ref, "error", err)
			}
		}
	}

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			respondError(w, r, err)
			return
		}
		ref, err := h.media.Save(ctx, f)
		f.Close()
		if err != nil {
			cleanup()
			respondError(w, r, err)
			return
		}
		saved = append(saved, ref)
	}

	refs := append(append([]string(nil), item.PhotoReferences...), saved...)
	updated, err := h.coordinator.UpdateItem(ctx, id, domain.ItemPatch{PhotoReferences: &refs})
	if err != nil {
		cleanup()
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, updated)
}
