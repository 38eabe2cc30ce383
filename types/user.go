package types

import "time"

// User is a persisted onboarding profile. The identity provider issues the
// primary key; name, email, and phone number are snapshots of provider data
// taken at submission time and are not kept in sync afterward.
type User struct {
	// ID is the identity-provider-issued user id. Immutable.
	ID string `json:"id" db:"id"`

	// Email is the user's primary verified email address.
	Email string `json:"email" db:"email"`

	// Username is the handle chosen on the profile form.
	Username string `json:"username" db:"username"`

	// Name is the user's full name as reported by the identity provider.
	// Empty string when the provider has no name on record.
	Name string `json:"name" db:"name"`

	// Bio is the free-text description from the profile form, if any.
	Bio string `json:"bio,omitempty" db:"bio"`

	// PhoneNumber is the first phone number registered with the identity
	// provider, if any.
	PhoneNumber string `json:"phone_number,omitempty" db:"phone_number"`

	// ImageURL points at the user's avatar: either an uploaded object-storage
	// URL or the identity provider's avatar as a fallback.
	ImageURL string `json:"image_url,omitempty" db:"image_url"`

	// CreatedAt is the timestamp of the first successful profile submission.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent profile submission.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
