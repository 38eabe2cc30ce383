package client

import (
	"context"
	"errors"
	"io"
)

// ErrUploadInFlight is returned when Upload is called while a prior upload
// has not settled. At most one upload runs per uploader.
var ErrUploadInFlight = errors.New("upload already in flight")

const msgUploadFailed = "An error occurred while uploading the image"

// AvatarUploader uploads a profile image and tracks its own busy/error
// state. A failed upload leaves the previously displayed URL untouched.
type AvatarUploader struct {
	api *Client

	busy    bool
	url     string
	lastErr string
}

// NewAvatarUploader constructs an uploader seeded with the current avatar
// URL, if any.
func NewAvatarUploader(api *Client, initialURL string) *AvatarUploader {
	return &AvatarUploader{api: api, url: initialURL}
}

// Busy reports whether an upload is in flight. Callers disable the upload
// affordance while true.
func (u *AvatarUploader) Busy() bool {
	return u.busy
}

// URL returns the last successfully uploaded (or initial) avatar URL.
func (u *AvatarUploader) URL() string {
	return u.url
}

// Err returns the last upload's user-facing error message, if any.
func (u *AvatarUploader) Err() string {
	return u.lastErr
}

// Upload transfers the file and returns its public URL. The returned error
// carries transport detail; Err surfaces only the generic message.
func (u *AvatarUploader) Upload(ctx context.Context, filename string, r io.Reader, contentType string) (string, error) {
	if u.busy {
		return "", ErrUploadInFlight
	}
	u.busy = true
	defer func() { u.busy = false }()

	u.lastErr = ""
	url, err := u.api.UploadAvatar(ctx, filename, r, contentType)
	if err != nil {
		u.lastErr = msgUploadFailed
		return "", err
	}

	u.url = url
	return url, nil
}
