package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/validation"
)

// OtherCategory groups helpers with no service type.
const OtherCategory = "Other"

// DirectoryEntry is one helper as listed in the customer directory.
type DirectoryEntry struct {
	Helper        domain.Helper
	DisplayRating string
}

// DirectoryCategory is a service category and the helpers offering it.
type DirectoryCategory struct {
	Key     string
	Name    string
	Helpers []DirectoryEntry
}

// Directory is the grouped, ordered listing shown to customers.
type Directory struct {
	Categories    []DirectoryCategory
	TotalHelpers  int
	AverageRating float64
}

// DisplayRating renders a rating with one decimal place.
func DisplayRating(r float64) string {
	return fmt.Sprintf("%.1f", r)
}

func categoryKey(serviceType string) string {
	key := strings.ToLower(strings.TrimSpace(serviceType))
	if key == "" {
		return strings.ToLower(OtherCategory)
	}
	return key
}

// BuildDirectory groups available helpers by category. Categories sort by
// name, helpers by rating descending then name, with the id breaking ties.
// Unavailable helpers never appear.
func BuildDirectory(helpers []domain.Helper) Directory {
	available := make([]domain.Helper, 0, len(helpers))
	for _, h := range helpers {
		if h.IsAvailable {
			available = append(available, h)
		}
	}
	slices.SortFunc(available, func(a, b domain.Helper) int {
		if c := cmp.Compare(categoryKey(a.ServiceType), categoryKey(b.ServiceType)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	dir := Directory{Categories: []DirectoryCategory{}, TotalHelpers: len(available)}
	var ratingSum float64
	for _, h := range available {
		ratingSum += h.Rating
		key := categoryKey(h.ServiceType)
		if n := len(dir.Categories); n == 0 || dir.Categories[n-1].Key != key {
			name := validation.TitleCase(h.ServiceType)
			if name == "" {
				name = OtherCategory
			}
			dir.Categories = append(dir.Categories, DirectoryCategory{Key: key, Name: name})
		}
		last := &dir.Categories[len(dir.Categories)-1]
		last.Helpers = append(last.Helpers, DirectoryEntry{Helper: h, DisplayRating: DisplayRating(h.Rating)})
	}
	if len(available) > 0 {
		dir.AverageRating = ratingSum / float64(len(available))
	}
	return dir
}
