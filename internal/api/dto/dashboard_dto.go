package dto

import (
	"time"

	"github.com/spec-kit/helper-marketplace/internal/service"
)

// DashboardResponse is the admin summary card set.
type DashboardResponse struct {
	TotalUsers         int              `json:"total_users"`
	AvailableHelpers   int              `json:"available_helpers"`
	UnavailableHelpers int              `json:"unavailable_helpers"`
	TotalBookings      int              `json:"total_bookings"`
	UnreadContacts     int              `json:"unread_contacts"`
	AverageRating      string           `json:"average_rating"`
	AverageRatingRaw   float64          `json:"average_rating_raw"`
	BookingsByStatus   map[string]int   `json:"bookings_by_status"`
	RecentHelpers      []HelperResponse `json:"recent_helpers"`
	FetchedAt          time.Time        `json:"fetched_at"`
}

// NewDashboardResponse maps computed dashboard counters.
func NewDashboardResponse(d service.Dashboard) DashboardResponse {
	byStatus := make(map[string]int, len(d.BookingsByStatus))
	for status, n := range d.BookingsByStatus {
		byStatus[string(status)] = n
	}
	recent := make([]HelperResponse, 0, len(d.RecentHelpers))
	for i := range d.RecentHelpers {
		recent = append(recent, NewHelperResponse(&d.RecentHelpers[i]))
	}
	return DashboardResponse{
		TotalUsers:         d.TotalUsers,
		AvailableHelpers:   d.AvailableHelpers,
		UnavailableHelpers: d.UnavailableHelpers,
		TotalBookings:      d.TotalBookings,
		UnreadContacts:     d.UnreadContacts,
		AverageRating:      d.AverageRatingDisplay,
		AverageRatingRaw:   d.AverageRating,
		BookingsByStatus:   byStatus,
		RecentHelpers:      recent,
		FetchedAt:          d.FetchedAt,
	}
}
