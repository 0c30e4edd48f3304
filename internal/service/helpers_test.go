package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/osouvenir/souvenirs/internal/db/dbtest"
	"github.com/osouvenir/souvenirs/internal/model"
	"github.com/osouvenir/souvenirs/internal/repository"
)

// fakeStorage keeps files in memory. Set saveFn or deleteFn to inject failures.
type fakeStorage struct {
	mu       sync.Mutex
	files    map[string][]byte
	deleted  []string
	saveFn   func(name string) error
	deleteFn func(name string) error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{}}
}

func (f *fakeStorage) Save(ctx context.Context, name string, r io.Reader) error {
	if f.saveFn != nil {
		err := f.saveFn(name)
		if err != nil {
			return err
		}
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = b
	return nil
}

func (f *fakeStorage) Delete(ctx context.Context, name string) error {
	if f.deleteFn != nil {
		err := f.deleteFn(name)
		if err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, name)
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeStorage) URL(name string) string {
	return "/uploads/" + name
}

func (f *fakeStorage) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[name]
	return ok
}

type testEnv struct {
	ctx       context.Context
	store     *repository.Store
	storage   *fakeStorage
	memories  *MemoryService
	pictures  *PictureService
	places    *PlaceService
	locations *LocationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewStore(dbtest.New(t))
	files := newFakeStorage()

	return &testEnv{
		ctx:       context.Background(),
		store:     store,
		storage:   files,
		memories:  NewMemoryService(store, files),
		pictures:  NewPictureService(store, files),
		places:    NewPlaceService(store),
		locations: NewLocationService(store),
	}
}

func (e *testEnv) user(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{
		Email:     email,
		Firstname: "Marie",
		Lastname:  "Curie",
		Roles:     model.Roles{model.RoleUser},
		CreatedAt: time.Now(),
	}
	err := e.store.Users.Create(e.ctx, u)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *testEnv) location(t *testing.T, city string) *model.Location {
	t.Helper()
	l := &model.Location{
		Area:       "Île-de-France",
		Department: "Paris",
		Street:     "1 rue de Rivoli",
		City:       city,
		Zipcode:    75001,
		Latitude:   "48.8606",
		Longitude:  "2.3376",
		CreatedAt:  time.Now(),
	}
	err := e.store.Locations.Create(e.ctx, l)
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	return l
}

func (e *testEnv) place(t *testing.T, location *model.Location, name string) *model.Place {
	t.Helper()
	p := &model.Place{
		LocationID: location.ID,
		Name:       name,
		Type:       "Musée",
		CreatedAt:  time.Now(),
	}
	err := e.store.Places.Create(e.ctx, p)
	if err != nil {
		t.Fatalf("create place: %v", err)
	}
	return p
}

func (e *testEnv) memory(t *testing.T, user *model.User, place *model.Place, location *model.Location, mainPicture *string) *model.Memory {
	t.Helper()
	m := &model.Memory{
		UserID:      user.ID,
		PlaceID:     place.ID,
		LocationID:  location.ID,
		Title:       "Une journée au Louvre",
		Content:     "La Joconde, enfin.",
		PictureDate: time.Date(2023, 7, 14, 12, 0, 0, 0, time.UTC),
		MainPicture: mainPicture,
		CreatedAt:   time.Now(),
	}
	err := e.store.Memories.Create(e.ctx, m)
	if err != nil {
		t.Fatalf("create memory: %v", err)
	}
	return m
}

func (e *testEnv) picture(t *testing.T, memory *model.Memory, url string) *model.Picture {
	t.Helper()
	p := &model.Picture{MemoryID: memory.ID, Picture: url, CreatedAt: time.Now()}
	err := e.store.Pictures.Create(e.ctx, p)
	if err != nil {
		t.Fatalf("create picture: %v", err)
	}
	return p
}

func (e *testEnv) memoryExists(t *testing.T, id int64) bool {
	t.Helper()
	_, err := e.store.Memories.ByID(e.ctx, id)
	return exists(t, err, repository.ErrMemoryNotFound)
}

func (e *testEnv) placeExists(t *testing.T, id int64) bool {
	t.Helper()
	_, err := e.store.Places.ByID(e.ctx, id)
	return exists(t, err, repository.ErrPlaceNotFound)
}

func (e *testEnv) locationExists(t *testing.T, id int64) bool {
	t.Helper()
	_, err := e.store.Locations.ByID(e.ctx, id)
	return exists(t, err, repository.ErrLocationNotFound)
}

func (e *testEnv) pictureExists(t *testing.T, id int64) bool {
	t.Helper()
	_, err := e.store.Pictures.ByID(e.ctx, id)
	return exists(t, err, repository.ErrPictureNotFound)
}

func exists(t *testing.T, err, notFound error) bool {
	t.Helper()
	if errors.Is(err, notFound) {
		return false
	}
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	return true
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func pngUpload(name string) *Upload {
	return &Upload{Filename: name, File: bytes.NewReader([]byte("\x89PNG\r\n\x1a\n"))}
}
