package domain

import "time"

// Helper is a service provider customers can book.
type Helper struct {
	ID              string
	Name            string
	Phone           string
	Email           *string
	ServiceType     string
	Location        string
	Experience      string
	IsAvailable     bool
	PricePerHour    *float64
	Rating          float64
	CompletedJobs   int
	Skills          []string
	EmployeeID      *string
	Description     *string
	ProfileImageURL *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
