package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthorityAdmin grants access to the administrative order listing.
const AuthorityAdmin = "ROLE_ADMIN"

// Address is a buyer's shipping address as collected by the payment
// provider during checkout.
type Address struct {
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	ZipCode string `json:"zipCode" db:"zip_code"`
	Country string `json:"country" db:"country"`
}

// Formatted renders the address for display, skipping empty parts.
func (a Address) Formatted() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{a.Street, a.City, a.ZipCode, a.Country} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// User is a buyer synchronized from the external identity provider.
// PublicID is the identity used to key orders and address updates.
type User struct {
	PublicID       uuid.UUID `json:"publicId" db:"public_id"`
	Email          string    `json:"email" db:"email"`
	FirstName      string    `json:"firstName" db:"first_name"`
	LastName       string    `json:"lastName" db:"last_name"`
	ImageURL       string    `json:"imageUrl" db:"image_url"`
	Authorities    []string  `json:"authorities" db:"authorities"`
	Address        Address   `json:"address"`
	LastModifiedAt time.Time `json:"lastModifiedAt" db:"last_modified_at"`
	LastSeenAt     time.Time `json:"lastSeenAt" db:"last_seen_at"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// HasAuthority reports whether the user carries the given authority.
func (u *User) HasAuthority(authority string) bool {
	return slices.Contains(u.Authorities, authority)
}

// UpdateFrom refreshes the identity-provider-owned attributes from a newer
// snapshot. Address and public id stay local.
func (u *User) UpdateFrom(other *User) {
	u.Email = other.Email
	u.FirstName = other.FirstName
	u.LastName = other.LastName
	u.ImageURL = other.ImageURL
	u.Authorities = other.Authorities
	u.LastModifiedAt = time.Now()
}

// NewUser initialises a first-sign-in user with a fresh public id.
func NewUser(email, firstName, lastName, imageURL string, authorities []string) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("user email is required")
	}
	now := time.Now()
	return &User{
		PublicID:       uuid.New(),
		Email:          email,
		FirstName:      firstName,
		LastName:       lastName,
		ImageURL:       imageURL,
		Authorities:    authorities,
		LastModifiedAt: now,
		LastSeenAt:     now,
		CreatedAt:      now,
	}, nil
}
