package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/osouvenir/souvenirs/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCase = cases.Title(language.French)

// LocationFields holds the raw form values so a rejected form can be redisplayed as typed.
type LocationFields struct {
	Area       string
	Department string
	District   string
	Street     string
	City       string
	Zipcode    string
	Latitude   string
	Longitude  string
}

func FieldsFromLocation(l *model.Location) LocationFields {
	f := LocationFields{
		Area:       l.Area,
		Department: l.Department,
		District:   district(l),
		Street:     l.Street,
		City:       l.City,
		Zipcode:    zipcode(l),
		Latitude:   l.Latitude,
		Longitude:  l.Longitude,
	}
	return f
}

func zipcode(l *model.Location) string {
	return fmt.Sprintf("%05d", l.Zipcode)
}

func district(l *model.Location) string {
	if l.District == nil {
		return ""
	}
	return *l.District
}

// locationURL builds /back/location/{id}, followed by the optional action segments.
func locationURL(id int64, action ...string) templ.SafeURL {
	parts := append([]string{"/back/location", strconv.FormatInt(id, 10)}, action...)
	return templ.SafeURL(strings.Join(parts, "/"))
}

func formHeading(id int64) string {
	if id == 0 {
		return "Nouvelle localité"
	}
	return "Modifier la localité"
}

func formAction(id int64) templ.SafeURL {
	if id == 0 {
		return "/back/location/new"
	}
	return locationURL(id, "edit")
}
