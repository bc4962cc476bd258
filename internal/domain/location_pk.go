package domain

import (
	"errors"
	"fmt"
	"strings"
)

// LocationPK errors
var (
	ErrInvalidLocationKey = errors.New("invalid location key")
)

const (
	// locationPKParts is the number of coordinate fields in a natural key
	locationPKParts = 5
	// locationPKFieldLength is the maximum width of a single coordinate field
	locationPKFieldLength = 4
	// LocationPKSeparator joins the coordinate fields in the string form
	LocationPKSeparator = "/"
)

// LocationPK is the 5-part composite natural key of a Location,
// rendered as AREA/AISLE/X/Y/Z
type LocationPK struct {
	Area  string `bson:"area" json:"area"`
	Aisle string `bson:"aisle" json:"aisle"`
	X     string `bson:"x" json:"x"`
	Y     string `bson:"y" json:"y"`
	Z     string `bson:"z" json:"z"`
}

// NewLocationPK creates a LocationPK from its coordinate fields
func NewLocationPK(area, aisle, x, y, z string) (LocationPK, error) {
	pk := LocationPK{Area: area, Aisle: aisle, X: x, Y: y, Z: z}
	if !pk.IsValid() {
		return LocationPK{}, ErrInvalidLocationKey
	}
	return pk, nil
}

// ParseLocationPK parses the AREA/AISLE/X/Y/Z string form
func ParseLocationPK(key string) (LocationPK, error) {
	parts := strings.Split(key, LocationPKSeparator)
	if len(parts) != locationPKParts {
		return LocationPK{}, fmt.Errorf("%w: expected %d fields, got %d", ErrInvalidLocationKey, locationPKParts, len(parts))
	}
	return NewLocationPK(parts[0], parts[1], parts[2], parts[3], parts[4])
}

// IsLocationKey reports whether the given business key parses as a Location natural key
func IsLocationKey(key string) bool {
	_, err := ParseLocationPK(key)
	return err == nil
}

// IsValid checks that every coordinate field is present and within width limits
func (pk LocationPK) IsValid() bool {
	for _, field := range []string{pk.Area, pk.Aisle, pk.X, pk.Y, pk.Z} {
		if field == "" || len(field) > locationPKFieldLength {
			return false
		}
		if strings.Contains(field, LocationPKSeparator) {
			return false
		}
	}
	return true
}

// String returns the AREA/AISLE/X/Y/Z form
func (pk LocationPK) String() string {
	return strings.Join([]string{pk.Area, pk.Aisle, pk.X, pk.Y, pk.Z}, LocationPKSeparator)
}
