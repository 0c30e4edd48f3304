package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/osouvenir/souvenirs/internal/model"
	"github.com/osouvenir/souvenirs/internal/repository"
	"github.com/osouvenir/souvenirs/internal/validation"
)

// LocationSelection says where a new memory happened:
// ExistingLocation or NewLocation.
type LocationSelection interface {
	isLocationSelection()
}

type ExistingLocation struct {
	ID int64
}

type NewLocation struct {
	Location LocationInput
}

func (ExistingLocation) isLocationSelection() {}
func (NewLocation) isLocationSelection()      {}

// PlaceSelection says which place a new memory is attached to:
// ReusePlace or NewPlace.
type PlaceSelection interface {
	isPlaceSelection()
}

type ReusePlace struct {
	ID int64
}

type NewPlace struct {
	Name string
	Type string
}

func (ReusePlace) isPlaceSelection() {}
func (NewPlace) isPlaceSelection()   {}

type LocationInput struct {
	Area       string
	Department string
	District   *string
	Street     string
	City       string
	Zipcode    int
	Latitude   string
	Longitude  string
}

func (in LocationInput) validate() error {
	for _, f := range []struct{ name, value string }{
		{"area", in.Area},
		{"department", in.Department},
		{"street", in.Street},
		{"city", in.City},
	} {
		err := validation.ValidateText(f.name, f.value, 255)
		if err != nil {
			return invalidf("%v", err)
		}
	}
	if in.District != nil && len(*in.District) > 255 {
		return invalidf("district is too long (max 255 characters)")
	}
	err := validation.ValidateZipcode(in.Zipcode)
	if err != nil {
		return invalidf("%v", err)
	}
	err = validation.ValidateLatitude(in.Latitude)
	if err != nil {
		return invalidf("%v", err)
	}
	err = validation.ValidateLongitude(in.Longitude)
	if err != nil {
		return invalidf("%v", err)
	}
	return nil
}

// apply copies the input onto a location record.
func (in LocationInput) apply(location *model.Location) {
	location.Area = strings.TrimSpace(in.Area)
	location.Department = strings.TrimSpace(in.Department)
	location.District = nil
	if in.District != nil && strings.TrimSpace(*in.District) != "" {
		district := strings.TrimSpace(*in.District)
		location.District = &district
	}
	location.Street = strings.TrimSpace(in.Street)
	location.City = strings.TrimSpace(in.City)
	location.Zipcode = in.Zipcode
	location.Latitude = strings.TrimSpace(in.Latitude)
	location.Longitude = strings.TrimSpace(in.Longitude)
}

func (p NewPlace) validate() error {
	err := validation.ValidateName("place name", p.Name)
	if err != nil {
		return invalidf("%v", err)
	}
	err = validation.ValidateName("place type", p.Type)
	if err != nil {
		return invalidf("%v", err)
	}
	return nil
}

// resolvePlace turns the selections into persisted records. It must run inside
// the transaction that also creates the memory so that a failure leaves nothing behind.
// The returned location is the selected one, which may differ from the place's own.
//
// Reused rows are locked place first, then location, the order reclaimOrphans
// takes them in, so a concurrent reclamation either sees the new memory or
// has already removed the rows.
func resolvePlace(ctx context.Context, repos *repository.Repositories, loc LocationSelection, sel PlaceSelection, now time.Time) (*model.Place, *model.Location, error) {
	var reused *model.Place
	if p, ok := sel.(ReusePlace); ok {
		if _, isNew := loc.(NewLocation); isNew {
			return nil, nil, invalidf("a new location needs a new place")
		}
		if _, isExisting := loc.(ExistingLocation); isExisting {
			found, err := repos.Places.Lock(ctx, p.ID)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to get place %d: %w", p.ID, err)
			}
			reused = found
		}
	}

	var location *model.Location

	switch l := loc.(type) {
	case ExistingLocation:
		found, err := repos.Locations.Lock(ctx, l.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get location %d: %w", l.ID, err)
		}
		location = found

	case NewLocation:
		err := l.Location.validate()
		if err != nil {
			return nil, nil, err
		}
		location = &model.Location{CreatedAt: now}
		l.Location.apply(location)
		err = repos.Locations.Create(ctx, location)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create location: %w", err)
		}

	default:
		return nil, nil, invalidf("location is required")
	}

	switch p := sel.(type) {
	case ReusePlace:
		if reused == nil {
			return nil, nil, fmt.Errorf("failed to get place %d: %w", p.ID, repository.ErrPlaceNotFound)
		}
		return reused, location, nil

	case NewPlace:
		err := p.validate()
		if err != nil {
			return nil, nil, err
		}
		place := &model.Place{
			LocationID: location.ID,
			Name:       strings.TrimSpace(p.Name),
			Type:       strings.TrimSpace(p.Type),
			CreatedAt:  now,
		}
		err = repos.Places.Create(ctx, place)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create place: %w", err)
		}
		return place, location, nil
	}

	return nil, nil, invalidf("place is required")
}
