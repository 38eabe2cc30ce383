package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sercamembert/rudyrudy/internal/identity"
	"github.com/sercamembert/rudyrudy/internal/services"
	"github.com/sercamembert/rudyrudy/internal/store"
	"github.com/sercamembert/rudyrudy/types"
)

const (
	maxAvatarBytes  = 8 << 20
	formFieldFile   = "avatar"
	msgUploadFailed = "Failed to upload the image. Please try again."
)

// ProfileHandler provides the onboarding HTTP surface: profile submission
// and avatar upload.
type ProfileHandler struct {
	profileService *services.ProfileService
	avatarService  *services.AvatarService
}

// NewProfileHandler constructs a handler with the provided services.
func NewProfileHandler(profileService *services.ProfileService, avatarService *services.AvatarService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		avatarService:  avatarService,
	}
}

// ProfileRouter registers profile routes on the given router.
func ProfileRouter(r chi.Router, profileService *services.ProfileService, avatarService *services.AvatarService) {
	handler := NewProfileHandler(profileService, avatarService)

	r.Post("/", handler.SubmitProfile)
	r.Post("/avatar", handler.UploadAvatar)
	r.Get("/me", handler.Me)
}

// SubmitProfile runs the profile submission action. The response body is
// always a types.ActionState; the status code mirrors its flags.
func (h *ProfileHandler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form data")
			return
		}
	}

	form := types.ProfileForm{
		Username:     r.FormValue("username"),
		Bio:          r.FormValue("bio"),
		ProfileImage: r.FormValue("profileImage"),
	}

	state := h.profileService.Submit(r.Context(), sessionToken(r), form)
	switch {
	case state.Success:
		writeJSON(w, http.StatusOK, state)
	case state.Redirect:
		writeJSON(w, http.StatusUnauthorized, state)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, state)
	}
}

// UploadAvatar stores an avatar image for the authenticated caller and
// returns its public URL.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	caller, err := h.profileService.Identity(r.Context(), sessionToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	if _, err := services.AvatarKey(caller.ID, header.Filename); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, err := h.avatarService.Upload(
		r.Context(),
		caller.ID,
		header.Filename,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	writeJSON(w, http.StatusOK, AvatarResponse{URL: url})
}

// Me returns the caller's persisted profile.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.profileService.Current(r.Context(), sessionToken(r))
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type AvatarResponse struct {
	URL string `json:"url"`
}
