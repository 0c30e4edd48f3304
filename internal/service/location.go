package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/osouvenir/souvenirs/internal/model"
	"github.com/osouvenir/souvenirs/internal/repository"
)

type LocationService struct {
	store *repository.Store
}

func NewLocationService(store *repository.Store) *LocationService {
	return &LocationService{store: store}
}

func (s *LocationService) Locations(ctx context.Context) ([]*model.Location, error) {
	locations, err := s.store.Locations.Locations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (s *LocationService) Location(ctx context.Context, id int64) (*model.Location, error) {
	return s.store.Locations.ByID(ctx, id)
}

func (s *LocationService) Create(ctx context.Context, in LocationInput) (*model.Location, error) {
	err := in.validate()
	if err != nil {
		return nil, err
	}

	location := &model.Location{CreatedAt: time.Now()}
	in.apply(location)

	err = s.store.Locations.Create(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	slog.Info("location created", "location_id", location.ID, "city", location.City)
	return location, nil
}

func (s *LocationService) Update(ctx context.Context, id int64, in LocationInput) (*model.Location, error) {
	err := in.validate()
	if err != nil {
		return nil, err
	}

	var location *model.Location
	err = s.store.InTx(ctx, func(repos *repository.Repositories) error {
		var err error
		location, err = repos.Locations.Lock(ctx, id)
		if err != nil {
			return err
		}

		now := time.Now()
		in.apply(location)
		location.UpdatedAt = &now
		return repos.Locations.Update(ctx, location)
	})
	if err != nil {
		return nil, err
	}

	return location, nil
}

// Delete removes a location that no memory and no place refers to.
func (s *LocationService) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(repos *repository.Repositories) error {
		_, err := repos.Locations.Lock(ctx, id)
		if err != nil {
			return err
		}

		memories, err := repos.Memories.CountByLocation(ctx, id, 0)
		if err != nil {
			return fmt.Errorf("failed to count memories by location: %w", err)
		}
		places, err := repos.Places.CountByLocation(ctx, id, 0)
		if err != nil {
			return fmt.Errorf("failed to count places by location: %w", err)
		}
		if memories > 0 || places > 0 {
			return fmt.Errorf("%w: %d memories, %d places", ErrLocationInUse, memories, places)
		}

		return repos.Locations.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("location deleted", "location_id", id)
	return nil
}
