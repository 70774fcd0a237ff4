package twin

import "encoding/json"

// User is a stored account. PasswordHash never leaves the twin.
type User struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordHash []byte `json:"-"`
}

// Studio is the studio record served by the twin.
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
	Reviews      json.RawMessage `json:"reviews"`
	Owner        string          `json:"owner,omitempty"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
}

type studioBody struct {
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Description  string   `json:"description"`
	PricePerHour *float64 `json:"pricePerHour"`
	Amenities    []string `json:"amenities"`
	ContactEmail string   `json:"contactEmail"`
	ContactPhone string   `json:"contactPhone"`
	Image        string   `json:"image"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

type authPayload struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
