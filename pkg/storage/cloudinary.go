// Package storage uploads payment proofs to Cloudinary.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"servetix/pkg/logger"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrNotConfigured is returned when no Cloudinary credentials were given
var ErrNotConfigured = errors.New("storage: cloudinary is not configured")

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

func (c Config) enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type Uploader struct {
	api    uploadAPI
	folder string
	now    func() time.Time
}

// NewUploader returns ErrNotConfigured when credentials are missing so the
// caller can run without proof uploads
func NewUploader(cfg Config) (*Uploader, error) {
	if !cfg.enabled() {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init failed: %w", err)
	}
	return newUploader(&cld.Upload, cfg.Folder), nil
}

func newUploader(api uploadAPI, folder string) *Uploader {
	return &Uploader{api: api, folder: strings.Trim(folder, "/"), now: time.Now}
}

// UploadPaymentProof stores the proof image and returns its https URL
func (u *Uploader) UploadPaymentProof(ctx context.Context, orderID string, file io.Reader) (string, error) {
	if file == nil {
		return "", errors.New("storage: no file to upload")
	}

	publicID := fmt.Sprintf("proof_%s_%d", orderID, u.now().Unix())
	result, err := u.api.Upload(ctx, file, uploader.UploadParams{
		Folder:       u.folder,
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("upload payment proof: %w", err)
	}
	if result == nil {
		return "", errors.New("upload payment proof: empty response")
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("upload payment proof: %s", result.Error.Message)
	}

	logger.GetDefault().InfoContext(ctx, "Payment proof uploaded",
		slog.String("order_id", orderID),
		slog.String("public_id", result.PublicID))
	return result.SecureURL, nil
}
