package market

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// User mirrors the user projection returned by the auth service.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the signup request body.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse mirrors the login and signup payloads. Signup may omit any of
// the fields.
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Studio is a rentable studio listing.
type Studio struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Location     string          `json:"location"`
	Description  string          `json:"description"`
	PricePerHour float64         `json:"pricePerHour"`
	Amenities    []string        `json:"amenities"`
	ContactEmail string          `json:"contactEmail"`
	ContactPhone string          `json:"contactPhone"`
	Image        string          `json:"image"`
	Rating       float64         `json:"rating"`
	Reviews      json.RawMessage `json:"reviews,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	UpdatedAt    string          `json:"updatedAt,omitempty"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (s Studio) ParsedCreatedAt() time.Time {
	return parseTime(s.CreatedAt)
}

// ParsedUpdatedAt returns the parsed UpdatedAt timestamp.
func (s Studio) ParsedUpdatedAt() time.Time {
	return parseTime(s.UpdatedAt)
}

// ReviewCount reports how many reviews the payload carries. Reviews are
// opaque beyond their count.
func (s Studio) ReviewCount() int {
	if len(s.Reviews) == 0 {
		return 0
	}
	var items []json.RawMessage
	if err := json.Unmarshal(s.Reviews, &items); err != nil {
		return 0
	}
	return len(items)
}

// Clone returns a deep copy of s.
func (s Studio) Clone() Studio {
	out := s
	if s.Amenities != nil {
		out.Amenities = append([]string(nil), s.Amenities...)
	}
	if s.Reviews != nil {
		out.Reviews = append(json.RawMessage(nil), s.Reviews...)
	}
	return out
}

// StudioInput is the create/update payload.
type StudioInput struct {
	Name         string   `json:"name" validate:"required,max=120"`
	Location     string   `json:"location" validate:"required"`
	Description  string   `json:"description"`
	PricePerHour float64  `json:"pricePerHour" validate:"gte=0"`
	Amenities    []string `json:"amenities"`
	ContactEmail string   `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone string   `json:"contactPhone" validate:"omitempty,max=32"`
	Image        string   `json:"image" validate:"omitempty,url"`
}

// InputFrom copies the editable fields of s.
func InputFrom(s Studio) StudioInput {
	return StudioInput{
		Name:         s.Name,
		Location:     s.Location,
		Description:  s.Description,
		PricePerHour: s.PricePerHour,
		Amenities:    append([]string(nil), s.Amenities...),
		ContactEmail: s.ContactEmail,
		ContactPhone: s.ContactPhone,
		Image:        s.Image,
	}
}

// StudioFilters narrows the studio list. Empty fields are not sent.
type StudioFilters struct {
	Location   string `toml:"location"`
	PriceRange string `toml:"price_range"`
	Rating     string `toml:"rating"`
	SearchTerm string `toml:"search_term"`
}

// IsZero reports whether no filter is set.
func (f StudioFilters) IsZero() bool {
	return f.Values().Encode() == ""
}

// Values encodes the filters as query parameters.
func (f StudioFilters) Values() url.Values {
	values := url.Values{}
	if v := strings.TrimSpace(f.Location); v != "" {
		values.Set("location", v)
	}
	if v := strings.TrimSpace(f.PriceRange); v != "" {
		values.Set("priceRange", v)
	}
	if v := strings.TrimSpace(f.Rating); v != "" {
		values.Set("rating", v)
	}
	if v := strings.TrimSpace(f.SearchTerm); v != "" {
		values.Set("searchTerm", v)
	}
	return values
}

// ParseAmenities splits comma separated text into a trimmed, de-duplicated
// list in first-seen order.
func ParseAmenities(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

type studioListResponse struct {
	Studios []Studio `json:"studios"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
