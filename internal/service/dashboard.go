package service

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/spec-kit/helper-marketplace/internal/cache"
	"github.com/spec-kit/helper-marketplace/internal/domain"
)

const recentHelperCount = 5

// Dashboard holds the admin console's summary counters.
type Dashboard struct {
	TotalUsers         int
	AvailableHelpers   int
	UnavailableHelpers int
	TotalBookings      int
	UnreadContacts     int
	// AverageRating is the mean over available helpers, 0 when there are none.
	AverageRating float64
	// AverageRatingDisplay is AverageRating rounded to one decimal.
	AverageRatingDisplay string
	BookingsByStatus     map[domain.BookingStatus]int
	RecentHelpers        []domain.Helper
	FetchedAt            time.Time
}

// ComputeDashboard derives the summary from a snapshot. Admin accounts are
// not counted as users.
func ComputeDashboard(snap *cache.Snapshot) Dashboard {
	d := Dashboard{BookingsByStatus: map[domain.BookingStatus]int{}}
	if snap == nil {
		d.AverageRatingDisplay = DisplayRating(0)
		return d
	}
	d.FetchedAt = snap.FetchedAt

	for _, u := range snap.Users {
		if u.Role != domain.RoleAdmin {
			d.TotalUsers++
		}
	}

	var ratingSum float64
	for _, h := range snap.Helpers {
		if h.IsAvailable {
			d.AvailableHelpers++
			ratingSum += h.Rating
		} else {
			d.UnavailableHelpers++
		}
	}
	if d.AvailableHelpers > 0 {
		d.AverageRating = ratingSum / float64(d.AvailableHelpers)
	}
	d.AverageRatingDisplay = DisplayRating(math.Round(d.AverageRating*10) / 10)

	d.TotalBookings = len(snap.Bookings)
	for _, b := range snap.Bookings {
		d.BookingsByStatus[b.Status]++
	}
	for _, c := range snap.Contacts {
		if c.Status == domain.ContactStatusNew {
			d.UnreadContacts++
		}
	}

	helpers := slices.Clone(snap.Helpers)
	slices.SortStableFunc(helpers, adminHelperOrder)
	if len(helpers) > recentHelperCount {
		helpers = helpers[:recentHelperCount]
	}
	d.RecentHelpers = helpers
	return d
}

// adminHelperOrder lists available helpers first, then by name.
func adminHelperOrder(a, b domain.Helper) int {
	if a.IsAvailable != b.IsAvailable {
		if a.IsAvailable {
			return -1
		}
		return 1
	}
	return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
}

// DashboardService reads admin summaries through the snapshot cache.
type DashboardService struct {
	snapshots *cache.SnapshotCache
}

// NewDashboardService constructs the service.
func NewDashboardService(snapshots *cache.SnapshotCache) *DashboardService {
	return &DashboardService{snapshots: snapshots}
}

// Stats returns the dashboard for the current snapshot. It never writes.
func (s *DashboardService) Stats(ctx context.Context) (Dashboard, error) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return Dashboard{}, storeError(err, "snapshot", "")
	}
	return ComputeDashboard(snap), nil
}

// Refresh drops the cached snapshot and recomputes from the store.
func (s *DashboardService) Refresh(ctx context.Context) (Dashboard, error) {
	snap, err := s.snapshots.Reload(ctx)
	if err != nil {
		return Dashboard{}, storeError(err, "snapshot", "")
	}
	return ComputeDashboard(snap), nil
}
