// Package media is the media-host collaborator: it stores uploaded files
// (avatars, cover images) on an S3-compatible backend and returns their
// public URLs.
package media

import (
	"context"
	"io"
)

// Host stores a media object and returns the URL it is served from.
// Failures are infrastructure errors; the session layer surfaces them
// as upstream errors.
type Host interface {
	Upload(ctx context.Context, r io.Reader, contentType string) (string, error)
}
