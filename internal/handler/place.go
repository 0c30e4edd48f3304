package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/osouvenir/souvenirs/internal/repository"
	"github.com/osouvenir/souvenirs/internal/service"
)

type placeRequest struct {
	Name     *string `json:"name"`
	Type     *string `json:"type"`
	Location *ref    `json:"location"`
}

type PlaceHandler struct {
	placeService *service.PlaceService
}

func NewPlaceHandler(placeService *service.PlaceService) *PlaceHandler {
	return &PlaceHandler{
		placeService: placeService,
	}
}

func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	places, err := h.placeService.Places(r.Context())
	if err != nil {
		writeInternal(w, r, "failed to list places", err)
		return
	}

	out := make([]placeJSON, 0, len(places))
	for _, p := range places {
		out = append(out, newPlaceJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PlaceHandler) Read(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Error : Endroit inexistant")
		return
	}

	place, err := h.placeService.Place(r.Context(), id)
	if errors.Is(err, repository.ErrPlaceNotFound) {
		writeError(w, http.StatusNotFound, "Error : Endroit inexistant")
		return
	}
	if err != nil {
		writeInternal(w, r, "failed to get place", err, "place_id", id)
		return
	}

	writeJSON(w, http.StatusOK, newPlaceJSON(place))
}

func (h *PlaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	if req.Location == nil || req.Name == nil || req.Type == nil {
		writeInvalid(w, fmt.Errorf("%w: name, type and location are required", service.ErrInvalidInput))
		return
	}

	place, err := h.placeService.Create(r.Context(), service.PlaceInput{
		LocationID: req.Location.ID,
		Name:       *req.Name,
		Type:       *req.Type,
	})
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeInvalid(w, err)
		return
	case errors.Is(err, repository.ErrLocationNotFound):
		writeError(w, http.StatusNotFound, "Erreur : La localité n'existe pas")
		return
	case err != nil:
		writeInternal(w, r, "failed to create place", err)
		return
	}

	writeJSON(w, http.StatusCreated, newPlaceJSON(place))
}

func (h *PlaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Erreur : L'endroit n'existe pas")
		return
	}

	var req placeRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		writeInvalid(w, err)
		return
	}

	patch := service.PlacePatch{Name: req.Name, Type: req.Type}
	if req.Location != nil {
		patch.LocationID = &req.Location.ID
	}

	place, err := h.placeService.Update(r.Context(), id, patch)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeInvalid(w, err)
		return
	case errors.Is(err, repository.ErrPlaceNotFound):
		writeError(w, http.StatusNotFound, "Erreur : L'endroit n'existe pas")
		return
	case errors.Is(err, repository.ErrLocationNotFound):
		writeError(w, http.StatusNotFound, "Erreur : La localité n'existe pas")
		return
	case err != nil:
		writeInternal(w, r, "failed to update place", err, "place_id", id)
		return
	}

	writeJSON(w, http.StatusOK, newPlaceJSON(place))
}

// Delete removes a place. Places still used by a memory answer 409.
func (h *PlaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Erreur : L'endroit n'existe pas")
		return
	}

	err = h.placeService.Delete(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrPlaceNotFound):
		writeError(w, http.StatusNotFound, "Erreur : L'endroit n'existe pas")
		return
	case errors.Is(err, service.ErrPlaceInUse):
		writeError(w, http.StatusConflict, "Erreur : L'endroit est utilisé par un souvenir")
		return
	case err != nil:
		writeInternal(w, r, "failed to delete place", err, "place_id", id)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Endroit supprime"))
}
