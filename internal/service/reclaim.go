package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osouvenir/souvenirs/internal/model"
	"github.com/osouvenir/souvenirs/internal/repository"
)

// Reclamation reports what reclaimOrphans removed.
type Reclamation struct {
	MemoryDeleted   bool
	PlaceDeleted    bool
	LocationDeleted bool
}

// reclaimOrphans removes a memory that never received a main picture, together
// with its place and location when no other memory uses them. When both are
// shared nothing is removed. A location still bound to a surviving place is kept.
//
// Must run in a transaction. Rows are locked memory, place, location, in that
// order, so that concurrent reclamations cannot both see the other as a user.
func reclaimOrphans(ctx context.Context, repos *repository.Repositories, memory *model.Memory) (Reclamation, error) {
	var r Reclamation

	place, err := repos.Places.Lock(ctx, memory.PlaceID)
	if err != nil {
		return r, fmt.Errorf("failed to lock place: %w", err)
	}
	location, err := repos.Locations.Lock(ctx, memory.LocationID)
	if err != nil {
		return r, fmt.Errorf("failed to lock location: %w", err)
	}

	othersWithLocation, err := repos.Memories.CountByLocation(ctx, location.ID, memory.ID)
	if err != nil {
		return r, fmt.Errorf("failed to count memories by location: %w", err)
	}
	othersWithPlace, err := repos.Memories.CountByPlace(ctx, place.ID, memory.ID)
	if err != nil {
		return r, fmt.Errorf("failed to count memories by place: %w", err)
	}

	deletePlace := othersWithPlace == 0
	deleteLocation := othersWithLocation == 0
	if !deletePlace && !deleteLocation {
		return r, nil
	}

	if deleteLocation {
		var goingAway int64
		if deletePlace && place.LocationID == location.ID {
			goingAway = place.ID
		}
		boundPlaces, err := repos.Places.CountByLocation(ctx, location.ID, goingAway)
		if err != nil {
			return r, fmt.Errorf("failed to count places by location: %w", err)
		}
		if boundPlaces > 0 {
			slog.Warn("keeping location still bound to places",
				"location_id", location.ID,
				"places", boundPlaces,
				"memory_id", memory.ID,
			)
			deleteLocation = false
		}
	}

	// Foreign keys dictate the order: pictures, memory, place, location.
	_, err = repos.Pictures.DeleteByMemory(ctx, memory.ID)
	if err != nil {
		return r, fmt.Errorf("failed to delete pictures: %w", err)
	}
	err = repos.Memories.Delete(ctx, memory.ID)
	if err != nil {
		return r, fmt.Errorf("failed to delete memory: %w", err)
	}
	r.MemoryDeleted = true

	if deletePlace {
		err = repos.Places.Delete(ctx, place.ID)
		if err != nil {
			return r, fmt.Errorf("failed to delete place: %w", err)
		}
		r.PlaceDeleted = true
	}

	if deleteLocation {
		err = repos.Locations.Delete(ctx, location.ID)
		if err != nil {
			return r, fmt.Errorf("failed to delete location: %w", err)
		}
		r.LocationDeleted = true
	}

	return r, nil
}
