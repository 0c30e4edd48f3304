package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/osouvenir/souvenirs/internal/model"
	"github.com/osouvenir/souvenirs/internal/repository"
	"github.com/osouvenir/souvenirs/internal/storage"
	"github.com/osouvenir/souvenirs/internal/validation"
)

// MemoryInput holds the memory fields supplied on creation.
type MemoryInput struct {
	Title              string
	Content            string
	PictureDate        time.Time
	MainPicture        *string
	AdditionalPictures []string
}

func (in MemoryInput) validate() error {
	err := validation.ValidateText("title", in.Title, 255)
	if err != nil {
		return invalidf("%v", err)
	}
	if strings.TrimSpace(in.Content) == "" {
		return invalidf("content is required")
	}
	if in.PictureDate.IsZero() {
		return invalidf("picture_date is required")
	}
	for _, url := range in.AdditionalPictures {
		if strings.TrimSpace(url) == "" {
			return invalidf("additional picture URL is required")
		}
	}
	return nil
}

// MemoryPatch holds optional memory fields; nil means unchanged.
type MemoryPatch struct {
	Title       *string
	Content     *string
	PictureDate *time.Time
	MainPicture *string
	LocationID  *int64
	PlaceID     *int64
}

// PlaceUpdate says what to do with a place while updating a memory:
// KeepPlace or RenamePlace.
type PlaceUpdate interface {
	isPlaceUpdate()
}

type KeepPlace struct{}

type RenamePlace struct {
	ID   int64
	Name string
	Type string
}

func (KeepPlace) isPlaceUpdate()   {}
func (RenamePlace) isPlaceUpdate() {}

// PictureUpsert updates the picture with ID when set, or creates one.
type PictureUpsert struct {
	ID  *int64
	URL string
}

type MemoryService struct {
	store   *repository.Store
	storage storage.Storage
}

func NewMemoryService(store *repository.Store, storage storage.Storage) *MemoryService {
	return &MemoryService{
		store:   store,
		storage: storage,
	}
}

func (s *MemoryService) Memories(ctx context.Context) ([]*model.MemoryDetail, error) {
	memories, err := s.store.Memories.Memories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}

	loader := newDetailLoader(s.store.Repositories, s.storage)
	details := make([]*model.MemoryDetail, 0, len(memories))
	for _, memory := range memories {
		detail, err := loader.load(ctx, memory)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	return details, nil
}

func (s *MemoryService) Memory(ctx context.Context, id int64) (*model.MemoryDetail, error) {
	memory, err := s.store.Memories.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return newDetailLoader(s.store.Repositories, s.storage).load(ctx, memory)
}

// Create stores a memory for user at the selected place and location. New
// places and locations, the memory and its additional pictures commit together.
func (s *MemoryService) Create(ctx context.Context, user *model.User, loc LocationSelection, place PlaceSelection, in MemoryInput) (*model.MemoryDetail, error) {
	if user == nil {
		return nil, ErrNotOwner
	}
	err := in.validate()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var memory *model.Memory

	err = s.store.InTx(ctx, func(repos *repository.Repositories) error {
		resolvedPlace, resolvedLocation, err := resolvePlace(ctx, repos, loc, place, now)
		if err != nil {
			return err
		}

		memory = &model.Memory{
			UserID:      user.ID,
			PlaceID:     resolvedPlace.ID,
			LocationID:  resolvedLocation.ID,
			Title:       strings.TrimSpace(in.Title),
			Content:     in.Content,
			PictureDate: in.PictureDate,
			MainPicture: nonEmpty(in.MainPicture),
			CreatedAt:   now,
		}
		err = repos.Memories.Create(ctx, memory)
		if err != nil {
			return fmt.Errorf("failed to create memory: %w", err)
		}

		for _, url := range in.AdditionalPictures {
			err = repos.Pictures.Create(ctx, &model.Picture{
				MemoryID:  memory.ID,
				Picture:   strings.TrimSpace(url),
				CreatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("failed to create picture: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("memory created", "memory_id", memory.ID, "user_id", user.ID, "place_id", memory.PlaceID, "location_id", memory.LocationID)
	return s.Memory(ctx, memory.ID)
}

// Update applies the fields set in patch and stamps updated_at.
func (s *MemoryService) Update(ctx context.Context, id int64, patch MemoryPatch) (*model.MemoryDetail, error) {
	err := s.store.InTx(ctx, func(repos *repository.Repositories) error {
		memory, err := repos.Memories.Lock(ctx, id)
		if err != nil {
			return err
		}

		err = applyPatch(ctx, repos, memory, patch)
		if err != nil {
			return err
		}

		return repos.Memories.Update(ctx, memory)
	})
	if err != nil {
		return nil, err
	}

	return s.Memory(ctx, id)
}

// UpdateWithPlace updates the memory fields, optionally renames a place, and
// upserts the given additional pictures. Pictures not listed are left alone.
func (s *MemoryService) UpdateWithPlace(ctx context.Context, id int64, placeUpdate PlaceUpdate, patch MemoryPatch, pictures []PictureUpsert) (*model.MemoryDetail, error) {
	now := time.Now()

	err := s.store.InTx(ctx, func(repos *repository.Repositories) error {
		memory, err := repos.Memories.Lock(ctx, id)
		if err != nil {
			return err
		}

		if rename, ok := placeUpdate.(RenamePlace); ok {
			err = (NewPlace{Name: rename.Name, Type: rename.Type}).validate()
			if err != nil {
				return err
			}
			place, err := repos.Places.Lock(ctx, rename.ID)
			if err != nil {
				return fmt.Errorf("failed to get place %d: %w", rename.ID, err)
			}
			place.Name = strings.TrimSpace(rename.Name)
			place.Type = strings.TrimSpace(rename.Type)
			place.UpdatedAt = &now
			err = repos.Places.Update(ctx, place)
			if err != nil {
				return fmt.Errorf("failed to update place: %w", err)
			}
		}

		err = applyPatch(ctx, repos, memory, patch)
		if err != nil {
			return err
		}
		err = repos.Memories.Update(ctx, memory)
		if err != nil {
			return fmt.Errorf("failed to update memory: %w", err)
		}

		return upsertPictures(ctx, repos, memory.ID, pictures, now)
	})
	if err != nil {
		return nil, err
	}

	return s.Memory(ctx, id)
}

// Delete removes the memory and all of its pictures. Place and location stay.
func (s *MemoryService) Delete(ctx context.Context, id int64) error {
	var removedPictures int64

	err := s.store.InTx(ctx, func(repos *repository.Repositories) error {
		_, err := repos.Memories.Lock(ctx, id)
		if err != nil {
			return err
		}

		removedPictures, err = repos.Pictures.DeleteByMemory(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete pictures: %w", err)
		}

		return repos.Memories.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("memory deleted", "memory_id", id, "pictures", removedPictures)
	return nil
}

func applyPatch(ctx context.Context, repos *repository.Repositories, memory *model.Memory, patch MemoryPatch) error {
	if patch.Title != nil {
		err := validation.ValidateText("title", *patch.Title, 255)
		if err != nil {
			return invalidf("%v", err)
		}
		memory.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return invalidf("content is required")
		}
		memory.Content = *patch.Content
	}
	if patch.PictureDate != nil {
		if patch.PictureDate.IsZero() {
			return invalidf("picture_date is required")
		}
		memory.PictureDate = *patch.PictureDate
	}
	if patch.MainPicture != nil {
		memory.MainPicture = nonEmpty(patch.MainPicture)
	}
	if patch.LocationID != nil {
		_, err := repos.Locations.ByID(ctx, *patch.LocationID)
		if err != nil {
			return fmt.Errorf("failed to get location %d: %w", *patch.LocationID, err)
		}
		memory.LocationID = *patch.LocationID
	}
	if patch.PlaceID != nil {
		_, err := repos.Places.ByID(ctx, *patch.PlaceID)
		if err != nil {
			return fmt.Errorf("failed to get place %d: %w", *patch.PlaceID, err)
		}
		memory.PlaceID = *patch.PlaceID
	}

	now := time.Now()
	memory.UpdatedAt = &now
	return nil
}

func upsertPictures(ctx context.Context, repos *repository.Repositories, memoryID int64, pictures []PictureUpsert, now time.Time) error {
	for _, p := range pictures {
		url := strings.TrimSpace(p.URL)
		if url == "" {
			return invalidf("additional picture URL is required")
		}

		if p.ID == nil {
			err := repos.Pictures.Create(ctx, &model.Picture{
				MemoryID:  memoryID,
				Picture:   url,
				CreatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("failed to create picture: %w", err)
			}
			continue
		}

		picture, err := repos.Pictures.ByID(ctx, *p.ID)
		if errors.Is(err, repository.ErrPictureNotFound) {
			slog.Warn("skipping unknown picture in memory update", "picture_id", *p.ID, "memory_id", memoryID)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to get picture %d: %w", *p.ID, err)
		}

		picture.Picture = url
		picture.MemoryID = memoryID
		picture.UpdatedAt = &now
		err = repos.Pictures.Update(ctx, picture)
		if err != nil {
			return fmt.Errorf("failed to update picture %d: %w", picture.ID, err)
		}
	}
	return nil
}

// nonEmpty maps a blank optional string to nil.
func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// detailLoader assembles MemoryDetails, caching the records shared between memories.
type detailLoader struct {
	repos     *repository.Repositories
	storage   storage.Storage
	users     map[int64]*model.User
	places    map[int64]*model.Place
	locations map[int64]*model.Location
}

func newDetailLoader(repos *repository.Repositories, storage storage.Storage) *detailLoader {
	return &detailLoader{
		repos:     repos,
		storage:   storage,
		users:     map[int64]*model.User{},
		places:    map[int64]*model.Place{},
		locations: map[int64]*model.Location{},
	}
}

func (l *detailLoader) load(ctx context.Context, memory *model.Memory) (*model.MemoryDetail, error) {
	var err error
	detail := &model.MemoryDetail{Memory: memory}

	detail.User = l.users[memory.UserID]
	if detail.User == nil {
		detail.User, err = l.repos.Users.ByID(ctx, memory.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user of memory %d: %w", memory.ID, err)
		}
		detail.User.PasswordHash = nil
		l.users[memory.UserID] = detail.User
	}

	detail.Place = l.places[memory.PlaceID]
	if detail.Place == nil {
		detail.Place, err = l.repos.Places.ByID(ctx, memory.PlaceID)
		if err != nil {
			return nil, fmt.Errorf("failed to get place of memory %d: %w", memory.ID, err)
		}
		l.places[memory.PlaceID] = detail.Place
	}

	detail.Location = l.locations[memory.LocationID]
	if detail.Location == nil {
		detail.Location, err = l.repos.Locations.ByID(ctx, memory.LocationID)
		if err != nil {
			return nil, fmt.Errorf("failed to get location of memory %d: %w", memory.ID, err)
		}
		l.locations[memory.LocationID] = detail.Location
	}

	detail.Pictures, err = l.repos.Pictures.ByMemory(ctx, memory.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pictures of memory %d: %w", memory.ID, err)
	}

	detail.MainPictureURL = pictureURL(l.storage, memory.MainPicture)
	return detail, nil
}

// pictureURL resolves a stored filename through storage. Absolute URLs pass through.
func pictureURL(s storage.Storage, picture *string) string {
	if picture == nil || *picture == "" {
		return ""
	}
	if strings.HasPrefix(*picture, "http://") || strings.HasPrefix(*picture, "https://") || s == nil {
		return *picture
	}
	return s.URL(*picture)
}
