package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/osouvenir/souvenirs/internal/model"
	"github.com/osouvenir/souvenirs/internal/repository"
	"github.com/osouvenir/souvenirs/internal/validation"
)

type PlaceInput struct {
	LocationID int64
	Name       string
	Type       string
}

// PlacePatch holds optional place fields; nil means unchanged.
type PlacePatch struct {
	LocationID *int64
	Name       *string
	Type       *string
}

type PlaceService struct {
	store *repository.Store
}

func NewPlaceService(store *repository.Store) *PlaceService {
	return &PlaceService{store: store}
}

func (s *PlaceService) Places(ctx context.Context) ([]*model.Place, error) {
	places, err := s.store.Places.Places(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	return places, nil
}

func (s *PlaceService) Place(ctx context.Context, id int64) (*model.Place, error) {
	return s.store.Places.ByID(ctx, id)
}

func (s *PlaceService) Create(ctx context.Context, in PlaceInput) (*model.Place, error) {
	err := (NewPlace{Name: in.Name, Type: in.Type}).validate()
	if err != nil {
		return nil, err
	}

	_, err = s.store.Locations.ByID(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}

	place := &model.Place{
		LocationID: in.LocationID,
		Name:       strings.TrimSpace(in.Name),
		Type:       strings.TrimSpace(in.Type),
		CreatedAt:  time.Now(),
	}
	err = s.store.Places.Create(ctx, place)
	if err != nil {
		return nil, fmt.Errorf("failed to create place: %w", err)
	}

	slog.Info("place created", "place_id", place.ID, "location_id", place.LocationID)
	return place, nil
}

func (s *PlaceService) Update(ctx context.Context, id int64, patch PlacePatch) (*model.Place, error) {
	var place *model.Place

	err := s.store.InTx(ctx, func(repos *repository.Repositories) error {
		var err error
		place, err = repos.Places.Lock(ctx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			err = validation.ValidateName("place name", *patch.Name)
			if err != nil {
				return invalidf("%v", err)
			}
			place.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Type != nil {
			err = validation.ValidateName("place type", *patch.Type)
			if err != nil {
				return invalidf("%v", err)
			}
			place.Type = strings.TrimSpace(*patch.Type)
		}
		if patch.LocationID != nil {
			_, err = repos.Locations.ByID(ctx, *patch.LocationID)
			if err != nil {
				return err
			}
			place.LocationID = *patch.LocationID
		}

		now := time.Now()
		place.UpdatedAt = &now
		return repos.Places.Update(ctx, place)
	})
	if err != nil {
		return nil, err
	}

	return place, nil
}

// Delete removes a place no memory refers to.
func (s *PlaceService) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(repos *repository.Repositories) error {
		_, err := repos.Places.Lock(ctx, id)
		if err != nil {
			return err
		}

		inUse, err := repos.Memories.CountByPlace(ctx, id, 0)
		if err != nil {
			return fmt.Errorf("failed to count memories by place: %w", err)
		}
		if inUse > 0 {
			return ErrPlaceInUse
		}

		return repos.Places.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("place deleted", "place_id", id)
	return nil
}
