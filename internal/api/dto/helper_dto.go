package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/spec-kit/helper-marketplace/internal/domain"
	"github.com/spec-kit/helper-marketplace/internal/service"
)

// NumberText holds a numeric form field as raw text. It accepts a JSON
// number, a string or null so blank inputs reach the parser unchanged.
type NumberText string

func (n *NumberText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberText(s)
	default:
		*n = NumberText(data)
	}
	return nil
}

// HelperRequest is the admin add and edit helper form.
type HelperRequest struct {
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email"`
	ServiceType     string     `json:"service_type"`
	Location        string     `json:"location"`
	Experience      string     `json:"experience"`
	PricePerHour    NumberText `json:"price_per_hour"`
	Rating          NumberText `json:"rating"`
	Skills          []string   `json:"skills"`
	Description     string     `json:"description"`
	ProfileImageURL string     `json:"profile_image_url"`
}

// AvailabilityRequest toggles directory visibility.
type AvailabilityRequest struct {
	Available *bool `json:"available"`
}

// Input converts the request to the service form.
func (r HelperRequest) Input() service.HelperInput {
	return service.HelperInput{
		Name:            r.Name,
		Phone:           r.Phone,
		ServiceType:     r.ServiceType,
		Location:        r.Location,
		Email:           r.Email,
		Experience:      r.Experience,
		PricePerHour:    string(r.PricePerHour),
		Rating:          string(r.Rating),
		Skills:          strings.Join(r.Skills, ","),
		Description:     r.Description,
		ProfileImageURL: r.ProfileImageURL,
	}
}

// HelperResponse is a helper as shown to admins and customers.
type HelperResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Email           *string   `json:"email"`
	ServiceType     string    `json:"service_type"`
	Location        string    `json:"location"`
	Experience      string    `json:"experience"`
	IsAvailable     bool      `json:"is_available"`
	PricePerHour    *float64  `json:"price_per_hour"`
	Rating          float64   `json:"rating"`
	DisplayRating   string    `json:"display_rating"`
	CompletedJobs   int       `json:"completed_jobs"`
	Skills          []string  `json:"skills"`
	EmployeeID      *string   `json:"employee_id"`
	Description     *string   `json:"description"`
	ProfileImageURL *string   `json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DirectoryCategoryResponse is one category of the customer directory.
type DirectoryCategoryResponse struct {
	Key         string           `json:"key"`
	Name        string           `json:"name"`
	HelperCount int              `json:"helper_count"`
	Helpers     []HelperResponse `json:"helpers"`
}

// DirectoryResponse is the grouped customer directory.
type DirectoryResponse struct {
	TotalHelpers  int                         `json:"total_helpers"`
	Categories    int                         `json:"categories"`
	AverageRating string                      `json:"average_rating"`
	Items         []DirectoryCategoryResponse `json:"items"`
}

// NewHelperResponse maps a domain helper.
func NewHelperResponse(h *domain.Helper) HelperResponse {
	skills := h.Skills
	if skills == nil {
		skills = []string{}
	}
	return HelperResponse{
		ID:              h.ID,
		Name:            h.Name,
		Phone:           h.Phone,
		Email:           h.Email,
		ServiceType:     h.ServiceType,
		Location:        h.Location,
		Experience:      h.Experience,
		IsAvailable:     h.IsAvailable,
		PricePerHour:    h.PricePerHour,
		Rating:          h.Rating,
		DisplayRating:   service.DisplayRating(h.Rating),
		CompletedJobs:   h.CompletedJobs,
		Skills:          skills,
		EmployeeID:      h.EmployeeID,
		Description:     h.Description,
		ProfileImageURL: h.ProfileImageURL,
		CreatedAt:       h.CreatedAt,
		UpdatedAt:       h.UpdatedAt,
	}
}

// NewDirectoryResponse maps a built directory.
func NewDirectoryResponse(d service.Directory) DirectoryResponse {
	out := DirectoryResponse{
		TotalHelpers:  d.TotalHelpers,
		Categories:    len(d.Categories),
		AverageRating: service.DisplayRating(d.AverageRating),
		Items:         make([]DirectoryCategoryResponse, 0, len(d.Categories)),
	}
	for _, cat := range d.Categories {
		helpers := make([]HelperResponse, 0, len(cat.Helpers))
		for i := range cat.Helpers {
			helpers = append(helpers, NewHelperResponse(&cat.Helpers[i].Helper))
		}
		out.Items = append(out.Items, DirectoryCategoryResponse{
			Key:         cat.Key,
			Name:        cat.Name,
			HelperCount: len(helpers),
			Helpers:     helpers,
		})
	}
	return out
}
