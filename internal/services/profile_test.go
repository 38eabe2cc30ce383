package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sercamembert/rudyrudy/internal/events"
	"github.com/sercamembert/rudyrudy/internal/identity"
	"github.com/sercamembert/rudyrudy/internal/store"
	"github.com/sercamembert/rudyrudy/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider is an in-memory identity.Provider. Tokens map directly to
// user ids so tests can mint sessions without JWT plumbing.
type fakeProvider struct {
	users map[string]identity.User
}

func newFakeProvider(users ...identity.User) *fakeProvider {
	p := &fakeProvider{users: make(map[string]identity.User)}
	for _, u := range users {
		p.users[u.ID] = u
	}
	return p
}

func (p *fakeProvider) VerifySession(ctx context.Context, token string) (string, error) {
	if _, ok := p.users[token]; !ok {
		return "", identity.ErrUnauthenticated
	}
	return token, nil
}

func (p *fakeProvider) User(ctx context.Context, id string) (identity.User, error) {
	user, ok := p.users[id]
	if !ok {
		return identity.User{}, identity.ErrUnauthenticated
	}
	return user, nil
}

// fakeUserRepo is an in-memory UserRepository with upsert semantics and an
// injectable failure.
type fakeUserRepo struct {
	rows      map[string]types.User
	upsertErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: make(map[string]types.User)}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (types.User, error) {
	user, ok := f.rows[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user types.User) (types.User, error) {
	if f.upsertErr != nil {
		return types.User{}, f.upsertErr
	}
	if existing, ok := f.rows[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	}
	f.rows[user.ID] = user
	return user, nil
}

// fakePublisher records published events and can simulate a broker failure.
type fakePublisher struct {
	published  []events.ProfileCompleted
	publishErr error
}

func (f *fakePublisher) Publish(ctx context.Context, event events.ProfileCompleted) (string, error) {
	if f.publishErr != nil {
		return "", f.publishErr
	}
	f.published = append(f.published, event)
	return "msg-1", nil
}

func (f *fakePublisher) Close() error { return nil }

func providerUser() identity.User {
	return identity.User{
		ID:           "u1",
		FirstName:    "Jan",
		LastName:     "Kowalski",
		Email:        "jan@example.com",
		PhoneNumbers: []string{"+48123456789", "+48987654321"},
		ImageURL:     "https://img.clerk.com/u1.png",
	}
}

func newTestProfileService(provider identity.Provider, repo UserRepository, publisher events.Publisher) *ProfileService {
	return NewProfileService(provider, repo, publisher, zap.NewNop())
}

func TestSubmitUnauthenticated(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestProfileService(newFakeProvider(), repo, nil)

	state := svc.Submit(context.Background(), "", types.ProfileForm{Username: "jan"})

	assert.True(t, state.Redirect)
	assert.False(t, state.Success)
	assert.NotEmpty(t, state.Error)
	assert.Empty(t, repo.rows, "no write on unauthenticated submit")
}

func TestSubmitCreatesRecord(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestProfileService(newFakeProvider(providerUser()), repo, nil)

	state := svc.Submit(context.Background(), "u1", types.ProfileForm{
		Username: "jan_k",
		Bio:      "hello",
	})

	require.Empty(t, state.Error)
	assert.True(t, state.Success)
	assert.True(t, state.Redirect)

	require.Len(t, repo.rows, 1)
	saved := repo.rows["u1"]
	assert.Equal(t, "u1", saved.ID)
	assert.Equal(t, "jan_k", saved.Username)
	assert.Equal(t, "hello", saved.Bio)
	assert.Equal(t, "jan@example.com", saved.Email)
	assert.Equal(t, "Jan Kowalski", saved.Name)
	assert.Equal(t, "+48123456789", saved.PhoneNumber, "first registered phone number wins")
	assert.Equal(t, "https://img.clerk.com/u1.png", saved.ImageURL, "provider avatar is the fallback")
}

func TestSubmitIsIdempotentPerID(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestProfileService(newFakeProvider(providerUser()), repo, nil)

	first := svc.Submit(context.Background(), "u1", types.ProfileForm{Username: "jan_k", Bio: "old bio"})
	require.True(t, first.Success)

	second := svc.Submit(context.Background(), "u1", types.ProfileForm{Username: "jan_k", Bio: "new bio"})
	require.True(t, second.Success)

	require.Len(t, repo.rows, 1, "re-submission must not create a duplicate row")
	assert.Equal(t, "new bio", repo.rows["u1"].Bio)
}

func TestSubmitUploadedImageWinsOverProviderAvatar(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestProfileService(newFakeProvider(providerUser()), repo, nil)

	state := svc.Submit(context.Background(), "u1", types.ProfileForm{
		Username:     "jan_k",
		ProfileImage: "https://cdn.example.com/profiles/u1-profile.png",
	})

	require.True(t, state.Success)
	assert.Equal(t, "https://cdn.example.com/profiles/u1-profile.png", repo.rows["u1"].ImageURL)
}

func TestSubmitFullNameDerivation(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		last     string
		wantName string
	}{
		{"first and last", "Jan", "Kowalski", "Jan Kowalski"},
		{"first only", "Jan", "", "Jan"},
		{"no name at all", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := providerUser()
			user.FirstName = tt.first
			user.LastName = tt.last

			repo := newFakeUserRepo()
			svc := newTestProfileService(newFakeProvider(user), repo, nil)

			state := svc.Submit(context.Background(), "u1", types.ProfileForm{Username: "jan_k"})
			require.True(t, state.Success)
			assert.Equal(t, tt.wantName, repo.rows["u1"].Name)
		})
	}
}

func TestSubmitValidationFailureWritesNothing(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestProfileService(newFakeProvider(providerUser()), repo, nil)

	state := svc.Submit(context.Background(), "u1", types.ProfileForm{Username: "jan-k"})

	assert.False(t, state.Success)
	assert.False(t, state.Redirect)
	assert.Equal(t, "Username may only contain letters, numbers, and underscores", state.Error)
	assert.Empty(t, repo.rows, "no write on validation failure")
}

func TestSubmitInvalidProviderEmailFailsBeforeWrite(t *testing.T) {
	user := providerUser()
	user.Email = "broken"

	repo := newFakeUserRepo()
	svc := newTestProfileService(newFakeProvider(user), repo, nil)

	state := svc.Submit(context.Background(), "u1", types.ProfileForm{Username: "jan_k"})

	assert.Equal(t, "Invalid email address", state.Error)
	assert.Empty(t, repo.rows)
}

func TestSubmitPersistenceFaultReturnsGenericError(t *testing.T) {
	repo := newFakeUserRepo()
	repo.upsertErr = errors.New("pq: connection refused")
	svc := newTestProfileService(newFakeProvider(providerUser()), repo, nil)

	state := svc.Submit(context.Background(), "u1", types.ProfileForm{Username: "jan_k"})

	assert.False(t, state.Success)
	assert.Equal(t, msgSubmitFailed, state.Error)
	assert.NotContains(t, state.Error, "pq:", "backend detail must not leak")
}

func TestSubmitPublishesCompletionEvent(t *testing.T) {
	repo := newFakeUserRepo()
	publisher := &fakePublisher{}
	svc := newTestProfileService(newFakeProvider(providerUser()), repo, publisher)

	state := svc.Submit(context.Background(), "u1", types.ProfileForm{Username: "jan_k"})
	require.True(t, state.Success)

	require.Len(t, publisher.published, 1)
	event := publisher.published[0]
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, "jan_k", event.Username)
	assert.Equal(t, "jan@example.com", event.Email)
	assert.False(t, event.CompletedAt.IsZero())
}

func TestSubmitSucceedsWhenPublishFails(t *testing.T) {
	repo := newFakeUserRepo()
	publisher := &fakePublisher{publishErr: errors.New("broker down")}
	svc := newTestProfileService(newFakeProvider(providerUser()), repo, publisher)

	state := svc.Submit(context.Background(), "u1", types.ProfileForm{Username: "jan_k"})

	assert.True(t, state.Success, "publishing is best effort")
	assert.Len(t, repo.rows, 1)
}

func TestCurrent(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestProfileService(newFakeProvider(providerUser()), repo, nil)

	_, err := svc.Current(context.Background(), "u1")
	assert.ErrorIs(t, err, store.ErrNotFound, "no profile before first submission")

	state := svc.Submit(context.Background(), "u1", types.ProfileForm{Username: "jan_k"})
	require.True(t, state.Success)

	user, err := svc.Current(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "jan_k", user.Username)

	_, err = svc.Current(context.Background(), "")
	assert.ErrorIs(t, err, identity.ErrUnauthenticated)
}
