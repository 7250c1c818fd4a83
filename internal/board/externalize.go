package board

import (
	"encoding/base64"
	"fmt"
	"log"
	"regexp"
	"strings"

	"moimlink/internal/storage"
)

var (
	dataImgRe = regexp.MustCompile(`(?i)<img\b[^>]*\bsrc=["'](data:image/[^"']+)["'][^>]*>`)
	dataURLRe = regexp.MustCompile(`(?i)^data:(image/[a-z0-9.+-]+);base64,(.+)$`)
)

// Externalizer replaces inline base64 images in rich-text content with
// references to uploaded storage objects.
type Externalizer struct {
	Objects storage.ObjectStore
}

// ExternalizeInlineImages uploads every distinct embedded image once and
// substitutes its public URL for every occurrence of that exact payload.
// A failed upload is non-fatal: the image stays embedded and the rest of the
// document is processed normally.
func (e Externalizer) ExternalizeInlineImages(html, groupGid string) string {
	matches := dataImgRe.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return html
	}

	out := html
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		dataURL := m[1]
		if seen[dataURL] {
			continue
		}
		seen[dataURL] = true

		url, err := e.uploadDataURL(dataURL, groupGid)
		if err != nil {
			log.Printf("[BOARD] inline image kept embedded: %v", err)
			continue
		}
		out = strings.ReplaceAll(out, dataURL, url)
	}
	return out
}

func (e Externalizer) uploadDataURL(dataURL, groupGid string) (string, error) {
	m := dataURLRe.FindStringSubmatch(dataURL)
	if m == nil {
		return "", fmt.Errorf("unsupported inline image encoding")
	}
	mime := strings.ToLower(m[1])
	blob, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", fmt.Errorf("decode inline image: %w", err)
	}

	ext := strings.TrimPrefix(mime, "image/")
	key := storage.BuildKey(KeyPrefix, groupGid, ext)
	if err := e.Objects.Upload(key, blob, mime, false); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	url := e.Objects.PublicURL(key)
	if url == "" {
		return "", fmt.Errorf("no public url for %s", key)
	}
	return url, nil
}
