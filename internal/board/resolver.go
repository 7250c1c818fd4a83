package board

import (
	"regexp"
	"strings"

	"moimlink/internal/storage"
)

// KeyPrefix scopes every board image key inside the bucket.
const KeyPrefix = "notice"

var (
	httpURLRe    = regexp.MustCompile(`(?i)^https?://`)
	publicPathRe = regexp.MustCompile(`(?i)/storage/v1/object/public/`)
	imgTagRe     = regexp.MustCompile(`(?i)<img\b([^>]*?)\bsrc=["']([^"']+)["']([^>]*)>`)
)

// Resolver maps raw image references (bare filenames, storage keys, absolute
// URLs) to externally servable URLs.
type Resolver struct {
	Objects storage.ObjectStore
}

// ResolveImageURL returns a directly usable URL for a raw reference, or ""
// when there is nothing to resolve. Already-absolute and already-public
// references pass through unchanged; anything else is treated as a storage
// key and canonicalized to notice/<groupGid>/<file>.
func (r Resolver) ResolveImageURL(raw, groupGid string) string {
	if raw == "" {
		return ""
	}
	if httpURLRe.MatchString(raw) || publicPathRe.MatchString(raw) {
		return raw
	}

	key := strings.TrimLeft(raw, "/")
	if groupGid != "" && !strings.HasPrefix(key, KeyPrefix+"/"+groupGid+"/") {
		if strings.HasPrefix(key, groupGid+"/") {
			key = KeyPrefix + "/" + key
		} else {
			key = KeyPrefix + "/" + groupGid + "/" + key
		}
	}
	return r.Objects.PublicURL(key)
}

// ResolveAllImageSrc rewrites the src attribute of every img tag in html.
// Only src changes; attributes before and after it are left untouched.
// References that cannot be resolved keep their original src.
func (r Resolver) ResolveAllImageSrc(html, groupGid string) string {
	if html == "" {
		return ""
	}
	return imgTagRe.ReplaceAllStringFunc(html, func(tag string) string {
		m := imgTagRe.FindStringSubmatch(tag)
		resolved := r.ResolveImageURL(m[2], groupGid)
		if resolved == "" {
			resolved = m[2]
		}
		return "<img" + m[1] + `src="` + resolved + `"` + m[3] + ">"
	})
}
