package repository

import (
	"fmt"
	"time"
)

// ParseTime parses a stored date string in "2006-01-02" or RFC3339 format.
// Rows written by this backend use RFC3339; the date-only form covers rows
// seeded by hand or imported from older dumps.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse("2006-01-02", str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}
