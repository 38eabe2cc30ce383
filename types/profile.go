package types

// ProfileForm is the field-value collection submitted from the profile form.
// ProfileImage is optional; when empty the identity provider's avatar URL is
// used instead.
type ProfileForm struct {
	Username     string `json:"username"`
	Bio          string `json:"bio,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// ActionState is the structured result of a profile submission. Redirect
// signals the client to navigate away: on success to the post-onboarding
// destination, on a nil identity to the sign-in page.
type ActionState struct {
	Error    string `json:"error,omitempty"`
	Success  bool   `json:"success,omitempty"`
	Redirect bool   `json:"redirect,omitempty"`
}
