package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/spec-kit/helper-marketplace/internal/cache"
	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/repository"
	apperrors "github.com/spec-kit/helper-marketplace/pkg/util"
)

func TestDisplayRating(t *testing.T) {
	cases := map[float64]string{
		4.567: "4.6",
		4.0:   "4.0",
		0:     "0.0",
		5:     "5.0",
	}
	for in, want := range cases {
		if got := DisplayRating(in); got != want {
			t.Errorf("DisplayRating(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildDirectoryGroupsAndOrders(t *testing.T) {
	helpers := []domain.Helper{
		{ID: "h1", Name: "Zed", ServiceType: "Plumbing", Rating: 4.0, IsAvailable: true},
		{ID: "h2", Name: "amy", ServiceType: "Plumbing", Rating: 4.9, IsAvailable: true},
		{ID: "h3", Name: "Bo", ServiceType: "cleaning", Rating: 3.5, IsAvailable: true},
		{ID: "h4", Name: "Hidden", ServiceType: "Cleaning", Rating: 5.0, IsAvailable: false},
		{ID: "h5", Name: "Nobody", ServiceType: "  ", Rating: 4.2, IsAvailable: true},
		{ID: "h6", Name: "Bo", ServiceType: "Cleaning", Rating: 3.5, IsAvailable: true},
	}

	dir := BuildDirectory(helpers)

	if dir.TotalHelpers != 5 {
		t.Fatalf("TotalHelpers = %d", dir.TotalHelpers)
	}
	wantNames := []string{"Cleaning", "Other", "Plumbing"}
	if len(dir.Categories) != len(wantNames) {
		t.Fatalf("categories = %+v", dir.Categories)
	}
	for i, want := range wantNames {
		if dir.Categories[i].Name != want {
			t.Fatalf("category %d = %q, want %q", i, dir.Categories[i].Name, want)
		}
	}

	cleaning := dir.Categories[0].Helpers
	if len(cleaning) != 2 || cleaning[0].Helper.ID != "h3" || cleaning[1].Helper.ID != "h6" {
		t.Fatalf("cleaning order = %+v", cleaning)
	}
	plumbing := dir.Categories[2].Helpers
	if plumbing[0].Helper.ID != "h2" || plumbing[0].DisplayRating != "4.9" || plumbing[1].DisplayRating != "4.0" {
		t.Fatalf("plumbing order = %+v", plumbing)
	}

	want := (4.0 + 4.9 + 3.5 + 4.2 + 3.5) / 5
	if math.Abs(dir.AverageRating-want) > 1e-9 {
		t.Fatalf("AverageRating = %v, want %v", dir.AverageRating, want)
	}
}

func TestBuildDirectoryEmpty(t *testing.T) {
	dir := BuildDirectory([]domain.Helper{{Name: "off", IsAvailable: false}})
	if dir.TotalHelpers != 0 || len(dir.Categories) != 0 || dir.AverageRating != 0 {
		t.Fatalf("dir = %+v", dir)
	}
}

func TestListAvailableHelpersBackendError(t *testing.T) {
	svc := NewHelperService(HelperDependencies{HelperRepo: failingHelpers{err: errors.New("dial tcp: i/o timeout")}})
	_, err := svc.ListAvailableHelpers(context.Background())
	de := requireCode(t, err, apperrors.CodeBackend)
	if de.Message != "dial tcp: i/o timeout" {
		t.Fatalf("message = %q", de.Message)
	}
}

func TestComputeDashboard(t *testing.T) {
	snap := &cache.Snapshot{
		Users: []domain.User{
			{ID: "u1", Role: domain.RoleUser},
			{ID: "u2", Role: domain.RoleUser},
			{ID: "a1", Role: domain.RoleAdmin},
		},
		Helpers: []domain.Helper{
			{Name: "c", Rating: 4.5, IsAvailable: true},
			{Name: "a", Rating: 4.0, IsAvailable: true},
			{Name: "b", Rating: 1.0, IsAvailable: false},
			{Name: "d", Rating: 4.3, IsAvailable: true},
		},
		Bookings: []domain.Booking{
			{Status: domain.BookingStatusPending},
			{Status: domain.BookingStatusPending},
			{Status: domain.BookingStatusCompleted},
		},
		Contacts: []domain.ContactMessage{
			{Status: domain.ContactStatusNew},
			{Status: domain.ContactStatusRead},
		},
	}

	d := ComputeDashboard(snap)

	if d.TotalUsers != 2 || d.AvailableHelpers != 3 || d.UnavailableHelpers != 1 {
		t.Fatalf("counts = %+v", d)
	}
	if d.TotalBookings != 3 || d.BookingsByStatus[domain.BookingStatusPending] != 2 || d.UnreadContacts != 1 {
		t.Fatalf("booking/contact counts = %+v", d)
	}
	if d.AverageRatingDisplay != "4.3" {
		t.Fatalf("AverageRatingDisplay = %q", d.AverageRatingDisplay)
	}
	names := []string{}
	for _, h := range d.RecentHelpers {
		names = append(names, h.Name)
	}
	if len(names) != 4 || names[0] != "a" || names[2] != "d" || names[3] != "b" {
		t.Fatalf("RecentHelpers = %v", names)
	}
}

func TestComputeDashboardNoAvailableHelpers(t *testing.T) {
	d := ComputeDashboard(&cache.Snapshot{Helpers: []domain.Helper{{Rating: 5, IsAvailable: false}}})
	if d.AverageRating != 0 || d.AverageRatingDisplay != "0.0" {
		t.Fatalf("average = %v %q", d.AverageRating, d.AverageRatingDisplay)
	}
	if d := ComputeDashboard(nil); d.AverageRatingDisplay != "0.0" {
		t.Fatalf("nil snapshot display = %q", d.AverageRatingDisplay)
	}
}

func TestDashboardServiceRefresh(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewDashboardService(cache.NewSnapshotCache(store, nil))

	d, err := svc.Stats(ctx)
	if err != nil || d.TotalUsers != 0 {
		t.Fatalf("Stats = %+v, %v", d, err)
	}
	seedUser(t, store, domain.User{Username: "asha", Email: "asha@example.com"})

	if d, _ := svc.Stats(ctx); d.TotalUsers != 0 {
		t.Fatalf("cached Stats saw the write: %+v", d)
	}
	d, err = svc.Refresh(ctx)
	if err != nil || d.TotalUsers != 1 {
		t.Fatalf("Refresh = %+v, %v", d, err)
	}
}
