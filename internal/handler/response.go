package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/osouvenir/souvenirs/internal/model"
	"github.com/osouvenir/souvenirs/internal/service"
)

const maxJSONBody = 1 << 20

var errBadID = errors.New("id must be a positive integer")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError answers with a bare JSON string, the format API clients already parse.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, message)
}

// writeInvalid answers 400 with the validation detail.
func writeInvalid(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error":  "Invalid input",
		"detail": service.Detail(err),
	})
}

// writeInternal logs err and answers 500 without leaking it.
func writeInternal(w http.ResponseWriter, r *http.Request, msg string, err error, args ...any) {
	slog.Error(msg, append([]any{"error", err, "path", r.URL.Path}, args...)...)
	writeError(w, http.StatusInternalServerError, "Erreur interne du serveur")
}

// decodeJSON reads a single JSON document from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: request body is empty", service.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", service.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON document", service.ErrInvalidInput)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %v", service.ErrInvalidInput, errBadID)
	}
	return id, nil
}

// ref is the {"id": N} form used to point at another record.
type ref struct {
	ID int64 `json:"id"`
}

type userJSON struct {
	ID        int64    `json:"id"`
	Firstname string   `json:"firstname"`
	Lastname  string   `json:"lastname"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

type locationJSON struct {
	ID         int64   `json:"id"`
	Area       string  `json:"area"`
	Department string  `json:"department"`
	District   *string `json:"district"`
	Street     string  `json:"street"`
	City       string  `json:"city"`
	Zipcode    int     `json:"zipcode"`
	Latitude   string  `json:"latitude"`
	Longitude  string  `json:"longitude"`
}

type placeJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type memoryPictureJSON struct {
	ID      int64  `json:"id"`
	Picture string `json:"picture"`
}

type pictureJSON struct {
	ID      int64  `json:"id"`
	Picture string `json:"picture"`
	Memory  ref    `json:"memory"`
}

type memoryJSON struct {
	ID             int64               `json:"id"`
	Title          string              `json:"title"`
	Content        string              `json:"content"`
	PictureDate    time.Time           `json:"picture_date"`
	MainPicture    *string             `json:"main_picture"`
	MainPictureURL string              `json:"main_picture_url,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      *time.Time          `json:"updated_at"`
	Location       locationJSON        `json:"location"`
	Place          placeJSON           `json:"place"`
	User           userJSON            `json:"user"`
	Pictures       []memoryPictureJSON `json:"pictures"`
}

func newUserJSON(u *model.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Roles:     u.Roles.All(),
	}
}

func newLocationJSON(l *model.Location) locationJSON {
	return locationJSON{
		ID:         l.ID,
		Area:       l.Area,
		Department: l.Department,
		District:   l.District,
		Street:     l.Street,
		City:       l.City,
		Zipcode:    l.Zipcode,
		Latitude:   l.Latitude,
		Longitude:  l.Longitude,
	}
}

func newPlaceJSON(p *model.Place) placeJSON {
	return placeJSON{ID: p.ID, Name: p.Name, Type: p.Type}
}

func newPictureJSON(p *model.Picture) pictureJSON {
	return pictureJSON{ID: p.ID, Picture: p.Picture, Memory: ref{ID: p.MemoryID}}
}

func newMemoryJSON(d *model.MemoryDetail) memoryJSON {
	m := memoryJSON{
		ID:             d.Memory.ID,
		Title:          d.Memory.Title,
		Content:        d.Memory.Content,
		PictureDate:    d.Memory.PictureDate,
		MainPicture:    d.Memory.MainPicture,
		MainPictureURL: d.MainPictureURL,
		CreatedAt:      d.Memory.CreatedAt,
		UpdatedAt:      d.Memory.UpdatedAt,
		Location:       newLocationJSON(d.Location),
		Place:          newPlaceJSON(d.Place),
		User:           newUserJSON(d.User),
		Pictures:       make([]memoryPictureJSON, 0, len(d.Pictures)),
	}
	for _, p := range d.Pictures {
		m.Pictures = append(m.Pictures, memoryPictureJSON{ID: p.ID, Picture: p.Picture})
	}
	return m
}
