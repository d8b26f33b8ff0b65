package models

import (
	"fmt"
	"time"
)

// YachtListing represents a yacht offered for charter.
type YachtListing struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	PricePerDay float64   `json:"price_per_day"`
	Capacity    int       `json:"capacity"`
	Length      float64   `json:"length"` // meters
	Location    string    `json:"location"`
	Features    []string  `json:"features,omitempty"`
	Crew        int       `json:"crew,omitempty"`
	Cabins      int       `json:"cabins,omitempty"`
	Speed       float64   `json:"speed,omitempty"` // knots
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks required fields before the listing reaches storage.
func (y *YachtListing) Validate() error {
	if y.Name == "" {
		return fmt.Errorf("yacht name is required")
	}
	if y.PricePerDay <= 0 {
		return fmt.Errorf("price_per_day must be positive")
	}
	if y.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive")
	}
	return nil
}
