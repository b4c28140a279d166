package gallery

import (
	"context"
	"io"
)

// BlobStore abstracts the object storage holding uploaded photos. The public
// address of an uploaded object becomes the stored media_url.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	PublicURL(key string) string
}
