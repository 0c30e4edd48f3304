package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/osouvenir/souvenirs/internal/ctxkeys"
	"github.com/osouvenir/souvenirs/internal/repository"
	"github.com/osouvenir/souvenirs/internal/service"
	"github.com/osouvenir/souvenirs/internal/ui"
	"github.com/osouvenir/souvenirs/internal/validation"
)

// LocationHandler serves the back office pages for locations.
type LocationHandler struct {
	locationService *service.LocationService
}

func NewLocationHandler(locationService *service.LocationService) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
	}
}

func (h *LocationHandler) Index(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locationService.Locations(r.Context())
	if err != nil {
		slog.Error("failed to list locations", "error", err)
		http.Error(w, "Failed to load locations", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, ui.LocationIndex(locations, popFlash(w, r)))
}

func (h *LocationHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, ui.LocationForm(0, ui.LocationFields{}, ""))
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields := locationFieldsFromForm(r)

	in, err := locationInput(fields)
	if err == nil {
		_, err = h.locationService.Create(r.Context(), in)
	}
	if errors.Is(err, service.ErrInvalidInput) {
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, ui.LocationForm(0, fields, service.Detail(err)))
		return
	}
	if err != nil {
		slog.Error("failed to create location", "error", err, "user_id", ctxkeys.User(r.Context()).ID)
		ui.RenderStatus(w, r, http.StatusInternalServerError, ui.LocationForm(0, fields, "Une erreur est survenue, veuillez réessayer."))
		return
	}

	setFlash(w, ui.FlashSuccess, "La localite a bien ete ajoutee")
	http.Redirect(w, r, "/back/location/", http.StatusSeeOther)
}

func (h *LocationHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFound())
		return
	}

	location, err := h.locationService.Location(r.Context(), id)
	if errors.Is(err, repository.ErrLocationNotFound) {
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFound())
		return
	}
	if err != nil {
		slog.Error("failed to get location", "error", err, "location_id", id)
		http.Error(w, "Failed to load location", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, ui.LocationShow(location, popFlash(w, r)))
}

func (h *LocationHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFound())
		return
	}

	location, err := h.locationService.Location(r.Context(), id)
	if errors.Is(err, repository.ErrLocationNotFound) {
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFound())
		return
	}
	if err != nil {
		slog.Error("failed to get location", "error", err, "location_id", id)
		http.Error(w, "Failed to load location", http.StatusInternalServerError)
		return
	}

	ui.Render(w, r, ui.LocationForm(id, ui.FieldsFromLocation(location), ""))
}

func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFound())
		return
	}

	fields := locationFieldsFromForm(r)
	in, err := locationInput(fields)
	if err == nil {
		_, err = h.locationService.Update(r.Context(), id, in)
	}
	switch {
	case errors.Is(err, repository.ErrLocationNotFound):
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFound())
		return
	case errors.Is(err, service.ErrInvalidInput):
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, ui.LocationForm(id, fields, service.Detail(err)))
		return
	case err != nil:
		slog.Error("failed to update location", "error", err, "location_id", id)
		ui.RenderStatus(w, r, http.StatusInternalServerError, ui.LocationForm(id, fields, "Une erreur est survenue, veuillez réessayer."))
		return
	}

	setFlash(w, ui.FlashSuccess, "La localité a bien été modifiée")
	http.Redirect(w, r, "/back/location/", http.StatusSeeOther)
}

// Delete removes a location nothing refers to. The CSRF token is checked by middleware.
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFound())
		return
	}

	err = h.locationService.Delete(r.Context(), id)
	switch {
	case errors.Is(err, repository.ErrLocationNotFound):
		ui.RenderStatus(w, r, http.StatusNotFound, ui.NotFound())
		return
	case errors.Is(err, service.ErrLocationInUse):
		setFlash(w, ui.FlashError, "La localité est encore utilisée et ne peut pas être supprimée")
	case err != nil:
		slog.Error("failed to delete location", "error", err, "location_id", id)
		setFlash(w, ui.FlashError, "La localité n'a pas pu être supprimée")
	default:
		setFlash(w, ui.FlashSuccess, "La localité a bien été supprimée")
	}

	http.Redirect(w, r, "/back/location/", http.StatusSeeOther)
}

func locationFieldsFromForm(r *http.Request) ui.LocationFields {
	return ui.LocationFields{
		Area:       strings.TrimSpace(r.PostFormValue("area")),
		Department: strings.TrimSpace(r.PostFormValue("department")),
		District:   strings.TrimSpace(r.PostFormValue("district")),
		Street:     strings.TrimSpace(r.PostFormValue("street")),
		City:       strings.TrimSpace(r.PostFormValue("city")),
		Zipcode:    strings.TrimSpace(r.PostFormValue("zipcode")),
		Latitude:   strings.TrimSpace(r.PostFormValue("latitude")),
		Longitude:  strings.TrimSpace(r.PostFormValue("longitude")),
	}
}

func locationInput(f ui.LocationFields) (service.LocationInput, error) {
	zip, err := validation.ParseZipcode(f.Zipcode)
	if err != nil {
		return service.LocationInput{}, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}

	in := service.LocationInput{
		Area:       f.Area,
		Department: f.Department,
		Street:     f.Street,
		City:       f.City,
		Zipcode:    zip,
		Latitude:   f.Latitude,
		Longitude:  f.Longitude,
	}
	if f.District != "" {
		in.District = &f.District
	}
	return in, nil
}
