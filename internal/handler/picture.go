package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/osouvenir/souvenirs/internal/ctxkeys"
	"github.com/osouvenir/souvenirs/internal/repository"
	"github.com/osouvenir/souvenirs/internal/service"
	"github.com/osouvenir/souvenirs/internal/validation"
)

type pictureRequest struct {
	Picture string `json:"picture"`
	Memory  *ref   `json:"memory"`
}

type PictureHandler struct {
	pictureService *service.PictureService
	constraints    validation.FileConstraints
}

func NewPictureHandler(pictureService *service.PictureService, maxUploadSize int64) *PictureHandler {
	return &PictureHandler{
		pictureService: pictureService,
		constraints:    validation.ImageConstraints.WithMaxSize(maxUploadSize),
	}
}

func (h *PictureHandler) List(w http.ResponseWriter, r *http.Request) {
	pictures, err := h.pictureService.Pictures(r.Context())
	if err != nil {
		writeInternal(w, r, "failed to list pictures", err)
		return
	}

	out := make([]pictureJSON, 0, len(pictures))
	for _, p := range pictures {
		out = append(out, newPictureJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PictureHandler) Read(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Erreur : Photo inexistante")
		return
	}

	picture, err := h.pictureService.Picture(r.Context(), id)
	if errors.Is(err, repository.ErrPictureNotFound) {
		writeError(w, http.StatusNotFound, "Erreur : Photo inexistante")
		return
	}
	if err != nil {
		writeInternal(w, r, "failed to get picture", err, "picture_id", id)
		return
	}

	writeJSON(w, http.StatusOK, newPictureJSON(picture))
}

// Create attaches a picture URL to a memory. Kept for older clients.
func (h *PictureHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req pictureRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	if req.Memory == nil {
		writeInvalid(w, fmt.Errorf("%w: memory is required", service.ErrInvalidInput))
		return
	}

	picture, err := h.pictureService.Create(r.Context(), req.Memory.ID, req.Picture)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeInvalid(w, err)
		return
	case errors.Is(err, repository.ErrMemoryNotFound):
		writeError(w, http.StatusNotFound, "Erreur : Le souvenir associé n'existe pas")
		return
	case err != nil:
		writeInternal(w, r, "failed to create picture", err, "memory_id", req.Memory.ID)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"picture": newPictureJSON(picture),
		"message": "Photo enregistrée",
	})
}

// UploadMainPicture stores the multipart file "main_picture" as the memory's
// main picture. A request without a file keeps the current one, or removes a
// memory that has none.
func (h *PictureHandler) UploadMainPicture(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	memoryID, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Erreur : Le souvenir n'existe pas")
		return
	}

	upload, cleanup, err := h.readUpload(w, r)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	defer cleanup()

	_, err = h.pictureService.UploadMainPicture(r.Context(), user, memoryID, upload)
	switch {
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusUnauthorized, "Erreur : Vous n'êtes pas autorisé à ajouter de photo sur ce souvenir.")
		return
	case errors.Is(err, repository.ErrMemoryNotFound):
		writeError(w, http.StatusNotFound, "Erreur : Le souvenir n'existe pas")
		return
	case errors.Is(err, service.ErrMainPictureRequired):
		writeError(w, http.StatusBadRequest, "Erreur : Le souvenir doit contenir une image principale.")
		return
	case err != nil:
		writeInternal(w, r, "failed to upload main picture", err, "memory_id", memoryID, "user_id", user.ID)
		return
	}

	if upload == nil {
		writeMessage(w, http.StatusOK, "Le souvenir a bien été mis à jour.")
		return
	}
	writeMessage(w, http.StatusOK, "Image téléchargée et associée au souvenir avec succès.")
}

// readUpload returns the validated "main_picture" file, or nil when the
// request carries none.
func (h *PictureHandler) readUpload(w http.ResponseWriter, r *http.Request) (*service.Upload, func(), error) {
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, h.constraints.MaxSize+(1<<20))
	err := r.ParseMultipartForm(h.constraints.MaxSize)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, fmt.Errorf("%w: failed to parse form: %v", service.ErrInvalidInput, err)
	}

	file, header, err := r.FormFile("main_picture")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, fmt.Errorf("%w: failed to read main_picture: %v", service.ErrInvalidInput, err)
	}
	cleanup := func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close file", "error", closeErr)
		}
	}

	err = validation.ValidateFile(header, h.constraints)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}

	return &service.Upload{Filename: header.Filename, File: file}, cleanup, nil
}

// UploadAdditionalPictures acknowledges the request. Additional pictures are
// sent as URLs with the memory instead.
func (h *PictureHandler) UploadAdditionalPictures(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Image(s) suplémentaire(s) téléchargée(s) et associée(s) au souvenir avec succès.")
}

// Update changes the URL and memory of a picture. Kept for older clients.
func (h *PictureHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Erreur : La photo n'existe pas")
		return
	}

	var req pictureRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	if req.Memory == nil {
		writeInvalid(w, fmt.Errorf("%w: memory is required", service.ErrInvalidInput))
		return
	}

	picture, err := h.pictureService.Update(r.Context(), user, id, req.Memory.ID, req.Picture)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeInvalid(w, err)
		return
	case errors.Is(err, repository.ErrPictureNotFound):
		writeError(w, http.StatusNotFound, "Erreur : La photo n'existe pas")
		return
	case errors.Is(err, repository.ErrMemoryNotFound):
		writeError(w, http.StatusNotFound, "Erreur : Le souvenir associé n'existe pas")
		return
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusUnauthorized, "Erreur : Vous n'êtes pas autorisé à modifier cette photo.")
		return
	case err != nil:
		writeInternal(w, r, "failed to update picture", err, "picture_id", id, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"picture": newPictureJSON(picture),
		"message": "La photo a été mise à jour",
	})
}

func (h *PictureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Erreur : La photo n'existe pas")
		return
	}

	err = h.pictureService.Delete(r.Context(), user, id)
	switch {
	case errors.Is(err, repository.ErrPictureNotFound):
		writeError(w, http.StatusNotFound, "Erreur : La photo n'existe pas")
		return
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusUnauthorized, "Erreur : Vous n'êtes pas autorisé à supprimer cette photo.")
		return
	case err != nil:
		writeInternal(w, r, "failed to delete picture", err, "picture_id", id, "user_id", user.ID)
		return
	}

	writeMessage(w, http.StatusOK, "Photo supprimée")
}
