// Package images wraps the profile-image host. The rest of the application
// only sees opaque URLs and public identifiers.
package images

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Host uploads and deletes profile images by public identifier.
type Host interface {
	Upload(ctx context.Context, file io.Reader) (url string, err error)
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryHost is a Host backed by Cloudinary.
type CloudinaryHost struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryHost creates a CloudinaryHost from a CLOUDINARY_URL-style
// connection string.
func NewCloudinaryHost(cloudinaryURL string) (*CloudinaryHost, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("images: init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryHost{cld: cld}, nil
}

// Upload stores the image under a random public ID, cropped to the standard
// profile size, and returns its public URL.
func (h *CloudinaryHost) Upload(ctx context.Context, file io.Reader) (string, error) {
	publicID := uuid.NewString()

	result, err := h.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Transformation: "w_200,h_200,c_fill",
	})
	if err != nil {
		return "", fmt.Errorf("images: upload: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("images: upload returned no URL")
	}

	return result.SecureURL, nil
}

// Delete removes an image by public ID.
func (h *CloudinaryHost) Delete(ctx context.Context, publicID string) error {
	_, err := h.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("images: destroy %s: %w", publicID, err)
	}
	return nil
}

// PublicIDFromURL extracts the public identifier from a delivery URL: the
// last path segment without its file extension.
func PublicIDFromURL(imageURL string) string {
	segments := strings.Split(imageURL, "/")
	last := segments[len(segments)-1]
	if dot := strings.LastIndex(last, "."); dot > 0 {
		return last[:dot]
	}
	return last
}
