package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osouvenir/souvenirs/internal/model"
	"github.com/osouvenir/souvenirs/internal/repository"
	"github.com/osouvenir/souvenirs/internal/storage"
)

// Upload is an already validated image file.
type Upload struct {
	Filename string
	File     io.Reader
}

type PictureService struct {
	store   *repository.Store
	storage storage.Storage
}

func NewPictureService(store *repository.Store, storage storage.Storage) *PictureService {
	return &PictureService{
		store:   store,
		storage: storage,
	}
}

func (s *PictureService) Pictures(ctx context.Context) ([]*model.Picture, error) {
	pictures, err := s.store.Pictures.Pictures(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pictures: %w", err)
	}
	return pictures, nil
}

func (s *PictureService) Picture(ctx context.Context, id int64) (*model.Picture, error) {
	return s.store.Pictures.ByID(ctx, id)
}

// Create attaches a picture URL to a memory.
//
// Deprecated: pictures are sent along with the memory on creation and update.
func (s *PictureService) Create(ctx context.Context, memoryID int64, url string) (*model.Picture, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, invalidf("picture is required")
	}

	_, err := s.store.Memories.ByID(ctx, memoryID)
	if err != nil {
		return nil, err
	}

	picture := &model.Picture{
		MemoryID:  memoryID,
		Picture:   url,
		CreatedAt: time.Now(),
	}
	err = s.store.Pictures.Create(ctx, picture)
	if err != nil {
		return nil, fmt.Errorf("failed to create picture: %w", err)
	}

	return picture, nil
}

// UploadMainPicture stores upload as the main picture of a memory owned by user.
//
// With no upload, a memory that already has a main picture is only touched.
// A memory without one is reclaimed together with the place and location
// nobody else uses, and ErrMainPictureRequired is returned after the removal
// has been committed.
func (s *PictureService) UploadMainPicture(ctx context.Context, user *model.User, memoryID int64, upload *Upload) (*model.Memory, error) {
	if upload == nil {
		return s.keepOrReclaim(ctx, user, memoryID)
	}

	memory, err := s.store.Memories.ByID(ctx, memoryID)
	if err != nil {
		return nil, err
	}
	if !memory.OwnedBy(user) {
		return nil, ErrNotOwner
	}

	filename := uuid.New().String() + strings.ToLower(filepath.Ext(upload.Filename))
	err = s.storage.Save(ctx, filename, upload.File)
	if err != nil {
		return nil, fmt.Errorf("failed to save picture: %w", err)
	}

	var previous *string
	var previousShared bool
	err = s.store.InTx(ctx, func(repos *repository.Repositories) error {
		locked, err := repos.Memories.Lock(ctx, memoryID)
		if err != nil {
			return err
		}
		if !locked.OwnedBy(user) {
			return ErrNotOwner
		}

		now := time.Now()
		memory = locked
		previous = memory.MainPicture
		memory.MainPicture = &filename
		memory.UpdatedAt = &now
		err = repos.Memories.Update(ctx, memory)
		if err != nil {
			return err
		}

		if isStoredFile(previous) {
			others, err := repos.Memories.CountByMainPicture(ctx, *previous, memoryID)
			if err != nil {
				return fmt.Errorf("failed to count memories by main picture: %w", err)
			}
			previousShared = others > 0
		}
		return nil
	})
	if err != nil {
		// If the DB update fails, try to cleanup the uploaded file
		delErr := s.storage.Delete(ctx, filename)
		if delErr != nil {
			slog.Error("failed to delete picture from storage during cleanup", "error", delErr, "filename", filename)
		}
		return nil, err
	}

	// The replaced file stays while another memory still points at it.
	if isStoredFile(previous) && *previous != filename && !previousShared {
		delErr := s.storage.Delete(ctx, *previous)
		if delErr != nil {
			slog.Warn("failed to delete replaced main picture", "error", delErr, "filename", *previous)
		}
	}

	slog.Info("main picture uploaded", "memory_id", memoryID, "user_id", user.ID, "filename", filename)
	return memory, nil
}

func (s *PictureService) keepOrReclaim(ctx context.Context, user *model.User, memoryID int64) (*model.Memory, error) {
	var memory *model.Memory
	var reclaimed *Reclamation

	err := s.store.InTx(ctx, func(repos *repository.Repositories) error {
		var err error
		memory, err = repos.Memories.Lock(ctx, memoryID)
		if err != nil {
			return err
		}
		if !memory.OwnedBy(user) {
			return ErrNotOwner
		}

		if memory.HasMainPicture() {
			now := time.Now()
			memory.UpdatedAt = &now
			return repos.Memories.Update(ctx, memory)
		}

		r, err := reclaimOrphans(ctx, repos, memory)
		if err != nil {
			return err
		}
		reclaimed = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if reclaimed != nil {
		slog.Info("reclaimed memory without main picture",
			"memory_id", memoryID,
			"user_id", user.ID,
			"memory_deleted", reclaimed.MemoryDeleted,
			"place_deleted", reclaimed.PlaceDeleted,
			"location_deleted", reclaimed.LocationDeleted,
		)
		return nil, ErrMainPictureRequired
	}

	return memory, nil
}

// Update changes the URL and parent memory of a picture. The user must own
// both the current and the target memory.
//
// Deprecated: pictures are upserted through the memory update.
func (s *PictureService) Update(ctx context.Context, user *model.User, id, memoryID int64, url string) (*model.Picture, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, invalidf("picture is required")
	}

	var picture *model.Picture
	err := s.store.InTx(ctx, func(repos *repository.Repositories) error {
		var err error
		picture, err = repos.Pictures.ByID(ctx, id)
		if err != nil {
			return err
		}

		err = s.requireOwner(ctx, repos, user, picture.MemoryID)
		if err != nil {
			return err
		}
		if memoryID != picture.MemoryID {
			err = s.requireOwner(ctx, repos, user, memoryID)
			if err != nil {
				return err
			}
		}

		now := time.Now()
		picture.MemoryID = memoryID
		picture.Picture = url
		picture.UpdatedAt = &now
		return repos.Pictures.Update(ctx, picture)
	})
	if err != nil {
		return nil, err
	}

	return picture, nil
}

// Delete removes a picture of a memory owned by user.
func (s *PictureService) Delete(ctx context.Context, user *model.User, id int64) error {
	err := s.store.InTx(ctx, func(repos *repository.Repositories) error {
		picture, err := repos.Pictures.ByID(ctx, id)
		if err != nil {
			return err
		}

		err = s.requireOwner(ctx, repos, user, picture.MemoryID)
		if err != nil {
			return err
		}

		return repos.Pictures.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("picture deleted", "picture_id", id, "user_id", user.ID)
	return nil
}

func (s *PictureService) requireOwner(ctx context.Context, repos *repository.Repositories, user *model.User, memoryID int64) error {
	memory, err := repos.Memories.ByID(ctx, memoryID)
	if err != nil {
		return err
	}
	if !memory.OwnedBy(user) {
		return ErrNotOwner
	}
	return nil
}

// isStoredFile reports whether a main picture refers to a file we wrote.
func isStoredFile(picture *string) bool {
	if picture == nil || *picture == "" {
		return false
	}
	p := *picture
	return !strings.Contains(p, "/") && !strings.Contains(p, "\\") && !strings.HasPrefix(p, ".")
}
