package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/osouvenir/souvenirs/internal/ctxkeys"
	"github.com/osouvenir/souvenirs/internal/repository"
	"github.com/osouvenir/souvenirs/internal/service"
	"github.com/osouvenir/souvenirs/internal/validation"
)

// date accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
type date struct {
	time.Time
}

func (d *date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return fmt.Errorf("date must be a string")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		t, err := time.Parse(layout, s)
		if err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d *date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	return &d.Time
}

// zipcode accepts both "75001" and 75001.
type zipcode int

func (z *zipcode) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if !bytes.HasPrefix(b, []byte(`"`)) {
		var n int
		err := json.Unmarshal(b, &n)
		if err != nil {
			return fmt.Errorf("zipcode must be 5 digits")
		}
		*z = zipcode(n)
		return validation.ValidateZipcode(n)
	}

	var raw string
	err := json.Unmarshal(b, &raw)
	if err != nil {
		return err
	}
	n, err := validation.ParseZipcode(raw)
	if err != nil {
		return err
	}
	*z = zipcode(n)
	return nil
}

type memoryFields struct {
	Title              string   `json:"title"`
	Content            string   `json:"content"`
	PictureDate        date     `json:"picture_date"`
	MainPicture        *string  `json:"main_picture"`
	AdditionalPictures []string `json:"additional_pictures"`
}

func (f memoryFields) input() service.MemoryInput {
	return service.MemoryInput{
		Title:              f.Title,
		Content:            f.Content,
		PictureDate:        f.PictureDate.Time,
		MainPicture:        f.MainPicture,
		AdditionalPictures: f.AdditionalPictures,
	}
}

type createMemoryRequest struct {
	memoryFields
	Location *ref `json:"location"`
	Place    *ref `json:"place"`
}

type createMemoryAndPlaceRequest struct {
	Location *ref `json:"location"`
	Place    *struct {
		CreateNewPlace bool   `json:"create_new_place"`
		ID             int64  `json:"id"`
		Name           string `json:"name"`
		Type           string `json:"type"`
	} `json:"place"`
	Memory *memoryFields `json:"memory"`
}

type locationFields struct {
	Area       string  `json:"area"`
	Department string  `json:"department"`
	District   *string `json:"district"`
	Street     string  `json:"street"`
	City       string  `json:"city"`
	Zipcode    zipcode `json:"zipcode"`
	Latitude   string  `json:"latitude"`
	Longitude  string  `json:"longitude"`
}

func (f locationFields) input() service.LocationInput {
	return service.LocationInput{
		Area:       f.Area,
		Department: f.Department,
		District:   f.District,
		Street:     f.Street,
		City:       f.City,
		Zipcode:    int(f.Zipcode),
		Latitude:   f.Latitude,
		Longitude:  f.Longitude,
	}
}

type createMemoryLocationPlaceRequest struct {
	Location *locationFields `json:"location"`
	Place    *struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"place"`
	Memory *memoryFields `json:"memory"`
}

type memoryPatchFields struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	PictureDate *date   `json:"picture_date"`
	MainPicture *string `json:"main_picture"`
	Location    *ref    `json:"location"`
	Place       *ref    `json:"place"`
}

func (f memoryPatchFields) patch() service.MemoryPatch {
	p := service.MemoryPatch{
		Title:       f.Title,
		Content:     f.Content,
		PictureDate: f.PictureDate.ptr(),
		MainPicture: f.MainPicture,
	}
	if f.Location != nil {
		p.LocationID = &f.Location.ID
	}
	if f.Place != nil {
		p.PlaceID = &f.Place.ID
	}
	return p
}

type updateMemoryAndPlaceRequest struct {
	Place *struct {
		UpdatePlace bool   `json:"update_place"`
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Type        string `json:"type"`
	} `json:"place"`
	Memory *struct {
		memoryPatchFields
		AdditionalPictures []struct {
			ID  *int64 `json:"id"`
			URL string `json:"URL_image"`
		} `json:"additional_pictures"`
	} `json:"memory"`
}

type MemoryHandler struct {
	memoryService *service.MemoryService
}

func NewMemoryHandler(memoryService *service.MemoryService) *MemoryHandler {
	return &MemoryHandler{
		memoryService: memoryService,
	}
}

func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	memories, err := h.memoryService.Memories(r.Context())
	if err != nil {
		writeInternal(w, r, "failed to list memories", err)
		return
	}

	out := make([]memoryJSON, 0, len(memories))
	for _, m := range memories {
		out = append(out, newMemoryJSON(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MemoryHandler) Read(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Erreur : Souvenir inexistant")
		return
	}

	memory, err := h.memoryService.Memory(r.Context(), id)
	if errors.Is(err, repository.ErrMemoryNotFound) {
		writeError(w, http.StatusNotFound, "Erreur : Souvenir inexistant")
		return
	}
	if err != nil {
		writeInternal(w, r, "failed to get memory", err, "memory_id", id)
		return
	}

	writeJSON(w, http.StatusOK, newMemoryJSON(memory))
}

// Create stores a memory at an existing place and location.
func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createMemoryRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	if req.Location == nil || req.Place == nil {
		writeInvalid(w, fmt.Errorf("%w: location and place are required", service.ErrInvalidInput))
		return
	}

	memory, err := h.memoryService.Create(r.Context(), user,
		service.ExistingLocation{ID: req.Location.ID},
		service.ReusePlace{ID: req.Place.ID},
		req.input(),
	)
	if err != nil {
		h.createFailed(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newMemoryJSON(memory))
}

// CreateWithPlace stores a memory at an existing location, on a place that is
// either reused or created when place.create_new_place is set.
func (h *MemoryHandler) CreateWithPlace(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createMemoryAndPlaceRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	if req.Location == nil || req.Place == nil || req.Memory == nil {
		writeInvalid(w, fmt.Errorf("%w: location, place and memory are required", service.ErrInvalidInput))
		return
	}

	var place service.PlaceSelection = service.ReusePlace{ID: req.Place.ID}
	if req.Place.CreateNewPlace {
		place = service.NewPlace{Name: req.Place.Name, Type: req.Place.Type}
	}

	_, err = h.memoryService.Create(r.Context(), user, service.ExistingLocation{ID: req.Location.ID}, place, req.Memory.input())
	if err != nil {
		h.createFailed(w, r, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Souvenir créé")
}

// CreateWithLocationAndPlace stores a memory together with a new location and place.
func (h *MemoryHandler) CreateWithLocationAndPlace(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createMemoryLocationPlaceRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	if req.Location == nil || req.Place == nil || req.Memory == nil {
		writeInvalid(w, fmt.Errorf("%w: location, place and memory are required", service.ErrInvalidInput))
		return
	}

	_, err = h.memoryService.Create(r.Context(), user,
		service.NewLocation{Location: req.Location.input()},
		service.NewPlace{Name: req.Place.Name, Type: req.Place.Type},
		req.Memory.input(),
	)
	if err != nil {
		h.createFailed(w, r, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Souvenir créé")
}

func (h *MemoryHandler) createFailed(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeInvalid(w, err)
	case errors.Is(err, repository.ErrLocationNotFound):
		writeError(w, http.StatusNotFound, "Erreur : La localité n'existe pas")
	case errors.Is(err, repository.ErrPlaceNotFound):
		writeError(w, http.StatusNotFound, "Erreur : L'endroit n'existe pas")
	default:
		user := ctxkeys.User(r.Context())
		writeInternal(w, r, "failed to create memory", err, "user_id", user.ID)
	}
}

// Update applies the fields present in the body.
func (h *MemoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Erreur : Le souvenir n'existe pas")
		return
	}

	var req memoryPatchFields
	err = decodeJSON(w, r, &req)
	if err != nil {
		writeInvalid(w, err)
		return
	}

	memory, err := h.memoryService.Update(r.Context(), id, req.patch())
	if err != nil {
		h.updateFailed(w, r, id, err)
		return
	}

	writeJSON(w, http.StatusOK, newMemoryJSON(memory))
}

// UpdateWithPlace updates the memory, renames its place when
// place.update_place is set, and upserts the listed additional pictures.
func (h *MemoryHandler) UpdateWithPlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Erreur : Le souvenir n'existe pas")
		return
	}

	var req updateMemoryAndPlaceRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		writeInvalid(w, err)
		return
	}

	var placeUpdate service.PlaceUpdate = service.KeepPlace{}
	if req.Place != nil && req.Place.UpdatePlace {
		placeUpdate = service.RenamePlace{ID: req.Place.ID, Name: req.Place.Name, Type: req.Place.Type}
	}

	var patch service.MemoryPatch
	var pictures []service.PictureUpsert
	if req.Memory != nil {
		patch = req.Memory.patch()
		for _, p := range req.Memory.AdditionalPictures {
			pictures = append(pictures, service.PictureUpsert{ID: p.ID, URL: p.URL})
		}
	}

	_, err = h.memoryService.UpdateWithPlace(r.Context(), id, placeUpdate, patch, pictures)
	if err != nil {
		h.updateFailed(w, r, id, err)
		return
	}

	writeMessage(w, http.StatusOK, "Souvenir mis à jour")
}

func (h *MemoryHandler) updateFailed(w http.ResponseWriter, r *http.Request, id int64, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeInvalid(w, err)
	case errors.Is(err, repository.ErrMemoryNotFound):
		writeError(w, http.StatusNotFound, "Erreur : Le souvenir n'existe pas")
	case errors.Is(err, repository.ErrLocationNotFound):
		writeError(w, http.StatusNotFound, "Erreur : La localité n'existe pas")
	case errors.Is(err, repository.ErrPlaceNotFound):
		writeError(w, http.StatusNotFound, "Erreur : L'endroit n'existe pas")
	default:
		writeInternal(w, r, "failed to update memory", err, "memory_id", id)
	}
}

func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Erreur : Le souvenir n'existe pas")
		return
	}

	err = h.memoryService.Delete(r.Context(), id)
	if errors.Is(err, repository.ErrMemoryNotFound) {
		writeError(w, http.StatusNotFound, "Erreur : Le souvenir n'existe pas")
		return
	}
	if err != nil {
		writeInternal(w, r, "failed to delete memory", err, "memory_id", id)
		return
	}

	writeMessage(w, http.StatusOK, "Souvenir supprimé")
}
