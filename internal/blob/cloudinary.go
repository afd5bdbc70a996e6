// Package blob uploads pending image references to a Cloudinary-style
// image host and returns permanent URLs.
package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Uploader resolves a pending local image reference (a data URI or raw
// base64 payload) into a permanent URL.
type Uploader interface {
	Upload(ctx context.Context, ref, folder string) (string, error)
}

// Resolved reports whether an image reference already points at remote
// storage. Anything else is a pending reference that needs an upload.
func Resolved(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// CloudinaryUploader performs unsigned uploads against the Cloudinary
// upload API using a preconfigured upload preset.
type CloudinaryUploader struct {
	httpClient   *http.Client
	baseURL      string // overridable for tests
	cloudName    string
	uploadPreset string
}

// NewCloudinaryUploader creates a new Cloudinary upload client.
func NewCloudinaryUploader(httpClient *http.Client, cloudName, uploadPreset string) *CloudinaryUploader {
	return &CloudinaryUploader{
		httpClient:   httpClient,
		baseURL:      "https://api.cloudinary.com/v1_1",
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
	}
}

// Upload submits the pending reference as an unsigned image upload and
// returns the hosted secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, ref, folder string) (string, error) {
	form := url.Values{}
	form.Set("file", ref)
	form.Set("upload_preset", u.uploadPreset)
	form.Set("folder", folder)

	endpoint := fmt.Sprintf("%s/%s/image/upload", u.baseURL, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("uploading image: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	if result.URL != "" {
		return result.URL, nil
	}
	return "", fmt.Errorf("upload response missing url")
}
