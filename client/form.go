package client

import (
	"context"
	"errors"

	"github.com/sercamembert/rudyrudy/internal/validation"
	"github.com/sercamembert/rudyrudy/types"
)

// FormState is the profile form's submission lifecycle state.
type FormState int

const (
	StateIdle FormState = iota
	StateEditing
	StateSubmitting
	StateSucceeded
	StateFailed
)

// ErrSubmissionInFlight is returned when Submit is called while a prior
// submission has not settled.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// ProfileForm drives the profile-completion form: field bindings, avatar URL
// injection, client-side validation, and the submission lifecycle. The
// submitted payload is the union of the bound fields and the out-of-band
// avatar URL at the time of submit.
type ProfileForm struct {
	api *Client

	state         FormState
	username      string
	bio           string
	avatarURL     string
	validationErr string
	submitErr     string
}

// NewProfileForm constructs a form seeded with the identity provider's
// existing avatar URL, which an AvatarUploader result may replace.
func NewProfileForm(api *Client, initialAvatarURL string) *ProfileForm {
	return &ProfileForm{
		api:       api,
		state:     StateIdle,
		avatarURL: initialAvatarURL,
	}
}

// State returns the current lifecycle state.
func (f *ProfileForm) State() FormState {
	return f.state
}

// SetUsername binds the username field.
func (f *ProfileForm) SetUsername(username string) {
	f.username = username
	f.edit()
}

// SetBio binds the bio field.
func (f *ProfileForm) SetBio(bio string) {
	f.bio = bio
	f.edit()
}

// SetAvatarURL injects an uploaded avatar URL into the next submission.
func (f *ProfileForm) SetAvatarURL(url string) {
	f.avatarURL = url
	f.edit()
}

// AvatarURL returns the avatar URL pending for the next submission.
func (f *ProfileForm) AvatarURL() string {
	return f.avatarURL
}

// ValidationError returns the last client-side validation message.
func (f *ProfileForm) ValidationError() string {
	return f.validationErr
}

// SubmitError returns the last server-reported submission error.
func (f *ProfileForm) SubmitError() string {
	return f.submitErr
}

// Submit validates the bound fields against the client schema and, if they
// pass, posts the payload. On success the form reaches StateSucceeded and
// the caller navigates away; on any error it reports StateFailed and the
// next edit returns it to StateEditing.
func (f *ProfileForm) Submit(ctx context.Context) (types.ActionState, error) {
	if f.state == StateSubmitting {
		return types.ActionState{}, ErrSubmissionInFlight
	}

	f.validationErr = ""
	f.submitErr = ""

	if err := validation.ValidateProfileForm(validation.ProfileFormInput{
		Username:     f.username,
		Bio:          f.bio,
		ProfileImage: f.avatarURL,
	}); err != nil {
		f.validationErr = err.Error()
		f.state = StateEditing
		return types.ActionState{}, err
	}

	f.state = StateSubmitting
	state, err := f.api.SubmitProfile(ctx, types.ProfileForm{
		Username:     f.username,
		Bio:          f.bio,
		ProfileImage: f.avatarURL,
	})
	if err != nil {
		f.submitErr = err.Error()
		f.state = StateFailed
		return types.ActionState{}, err
	}
	if state.Error != "" {
		f.submitErr = state.Error
		f.state = StateFailed
		return state, nil
	}

	f.state = StateSucceeded
	return state, nil
}

func (f *ProfileForm) edit() {
	if f.state != StateSubmitting {
		f.state = StateEditing
	}
}

// SignInForm gates the sign-in affordance on a well-formed email address.
// The check is cosmetic; the identity provider owns actual verification.
type SignInForm struct {
	email string
}

// SetEmail binds the email field.
func (f *SignInForm) SetEmail(email string) {
	f.email = email
}

// CanSubmit reports whether the bound email looks valid.
func (f *SignInForm) CanSubmit() bool {
	return validation.IsEmailValid(f.email)
}
