package model

import (
	"fmt"
	"slices"
)

// Division is the competition division of an event.
type Division string

// Distance is the race distance of an event.
type Distance string

// AgeGroup is either a numeric age or Open.
type AgeGroup string

// House is a runner's team affiliation.
type House string

const (
	DivisionBoys  Division = "Boys"
	DivisionGirls Division = "Girls"

	AgeGroupOpen AgeGroup = "Open"
)

var (
	divisions = []Division{DivisionBoys, DivisionGirls}
	distances = []Distance{"1km", "2km", "3km", "4km", "5km", "6km"}
	ageGroups = []AgeGroup{"12", "13", "14", "15", "16", "17", "18", AgeGroupOpen}
	houses    = []House{
		"Sheaffe", "Garran", "Burgmann", "Garnsey", "Hay",
		"Blaxland", "Edwards", "Middelton", "Eddison", "Jones",
	}
)

// Divisions returns the divisions in display order.
func Divisions() []Division { return slices.Clone(divisions) }

// Distances returns the distances in display order.
func Distances() []Distance { return slices.Clone(distances) }

// AgeGroups returns the age groups in display order.
func AgeGroups() []AgeGroup { return slices.Clone(ageGroups) }

// Houses returns the houses in display order.
func Houses() []House { return slices.Clone(houses) }

func (d Division) Valid() bool { return slices.Contains(divisions, d) }
func (d Distance) Valid() bool { return slices.Contains(distances, d) }
func (a AgeGroup) Valid() bool { return slices.Contains(ageGroups, a) }
func (h House) Valid() bool    { return slices.Contains(houses, h) }

// Label renders the age group as it appears in an event name.
func (a AgeGroup) Label() string {
	if a == AgeGroupOpen {
		return string(AgeGroupOpen)
	}
	return string(a) + " Years"
}

// ParseDivision validates s as a Division.
func ParseDivision(s string) (Division, error) {
	d := Division(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDivision, s)
	}
	return d, nil
}

// ParseDistance validates s as a Distance.
func ParseDistance(s string) (Distance, error) {
	d := Distance(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDistance, s)
	}
	return d, nil
}

// ParseAgeGroup validates s as an AgeGroup.
func ParseAgeGroup(s string) (AgeGroup, error) {
	a := AgeGroup(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAgeGroup, s)
	}
	return a, nil
}

// ParseHouse validates s as a House. Matching is exact.
func ParseHouse(s string) (House, error) {
	h := House(s)
	if !h.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidHouse, s)
	}
	return h, nil
}
