package services

import (
	"context"
	"time"

	"github.com/sercamembert/rudyrudy/internal/events"
	"github.com/sercamembert/rudyrudy/internal/identity"
	"github.com/sercamembert/rudyrudy/internal/validation"
	"github.com/sercamembert/rudyrudy/types"
	"go.uber.org/zap"
)

// User-facing messages. Backend fault detail is logged, never surfaced.
const (
	msgNotAuthenticated = "User is not authenticated"
	msgSubmitFailed     = "Failed to update the profile. Please try again."
)

// UserRepository defines persistence operations for onboarding profiles.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	Upsert(ctx context.Context, user types.User) (types.User, error)
}

// ProfileService owns the profile submission flow: it reconciles identity
// provider data with form input, validates the merged record, and persists
// it with at most one upsert per call.
type ProfileService struct {
	identity identity.Provider
	repo     UserRepository
	events   events.Publisher
	log      *zap.Logger
}

// NewProfileService constructs a ProfileService. events may be nil to
// disable event publishing.
func NewProfileService(provider identity.Provider, repo UserRepository, publisher events.Publisher, log *zap.Logger) *ProfileService {
	return &ProfileService{
		identity: provider,
		repo:     repo,
		events:   publisher,
		log:      log,
	}
}

// Submit merges the caller's identity record with the submitted form,
// validates the result against the server schema, and upserts it keyed by
// the provider-issued user id. Repeated submission with the same id
// overwrites the existing row. Failures are reported through the returned
// ActionState, never raised.
func (s *ProfileService) Submit(ctx context.Context, sessionToken string, form types.ProfileForm) types.ActionState {
	user, err := identity.CurrentUser(ctx, s.identity, sessionToken)
	if err != nil {
		return types.ActionState{Redirect: true, Error: msgNotAuthenticated}
	}

	imageURL := form.ProfileImage
	if imageURL == "" {
		imageURL = user.ImageURL
	}

	candidate := validation.ProfileCandidate{
		ID:          user.ID,
		Email:       user.Email,
		Username:    form.Username,
		Bio:         form.Bio,
		FullName:    user.FullName(),
		PhoneNumber: user.PhoneNumber(),
		ImageURL:    imageURL,
	}
	if err := validation.ValidateProfileCandidate(candidate); err != nil {
		return types.ActionState{Error: err.Error()}
	}

	saved, err := s.repo.Upsert(ctx, types.User{
		ID:          candidate.ID,
		Email:       candidate.Email,
		Username:    candidate.Username,
		Name:        candidate.FullName,
		Bio:         candidate.Bio,
		PhoneNumber: candidate.PhoneNumber,
		ImageURL:    candidate.ImageURL,
	})
	if err != nil {
		s.log.Error("profile upsert failed", zap.String("user_id", user.ID), zap.Error(err))
		return types.ActionState{Error: msgSubmitFailed}
	}

	s.publishCompleted(ctx, saved)

	return types.ActionState{Success: true, Redirect: true}
}

// Current resolves the caller's persisted profile, if any.
func (s *ProfileService) Current(ctx context.Context, sessionToken string) (types.User, error) {
	user, err := identity.CurrentUser(ctx, s.identity, sessionToken)
	if err != nil {
		return types.User{}, err
	}
	return s.repo.GetByID(ctx, user.ID)
}

// Identity resolves the caller's identity provider record.
func (s *ProfileService) Identity(ctx context.Context, sessionToken string) (identity.User, error) {
	return identity.CurrentUser(ctx, s.identity, sessionToken)
}

// publishCompleted emits a ProfileCompleted event. Publishing is best
// effort: a broker failure never fails the submission.
func (s *ProfileService) publishCompleted(ctx context.Context, user types.User) {
	if s.events == nil {
		return
	}
	event := events.ProfileCompleted{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		CompletedAt: time.Now(),
	}
	if _, err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("profile completed event not published", zap.String("user_id", user.ID), zap.Error(err))
	}
}
