package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectStore is the narrow contract the board code depends on. The real
// implementation talks to the hosted storage service; tests swap in a fake.
type ObjectStore interface {
	Upload(key string, data []byte, contentType string, overwrite bool) error
	// PublicURL returns the permanently public URL for a key, or "" when the
	// store cannot resolve it (e.g. not configured).
	PublicURL(key string) string
}

// Client uploads objects to a Supabase-compatible storage REST endpoint.
// Objects are immutable once written and publicly readable under
// /storage/v1/object/public/<bucket>/<key>.
type Client struct {
	BaseURL string
	Bucket  string
	APIKey  string

	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(os.Getenv("STORAGE_URL"), "/"),
		Bucket:     envOr("STORAGE_BUCKET", "group-post-images"),
		APIKey:     os.Getenv("STORAGE_SERVICE_KEY"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Upload stores data under key. With overwrite disabled the service rejects a
// duplicate key with 409, which surfaces as an error here.
func (c *Client) Upload(key string, data []byte, contentType string, overwrite bool) error {
	if c.BaseURL == "" || c.APIKey == "" {
		return fmt.Errorf("object storage not configured")
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.BaseURL, c.Bucket, key)
	req, err := http.NewRequest("POST", url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "max-age=3600")
	if overwrite {
		req.Header.Set("x-upsert", "true")
	} else {
		req.Header.Set("x-upsert", "false")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upload failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// PublicURL is computed rather than looked up. The service serves every
// object in a public bucket under a fixed path scheme.
func (c *Client) PublicURL(key string) string {
	if c.BaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.BaseURL, c.Bucket, key)
}

// BuildKey produces a fresh storage key <prefix>/<groupGid>/<ts>-<uuid>.<ext>.
// Timestamp plus random token makes collisions negligible.
func BuildKey(prefix, groupGid, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("%s/%s/%d-%s.%s", prefix, groupGid, time.Now().UnixMilli(), uuid.NewString(), ext)
}
