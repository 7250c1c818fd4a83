package board

import (
	"bytes"
	"strings"
	"testing"
)

func TestExternalizeInlineImages(t *testing.T) {
	objects := newFakeObjects()
	e := Externalizer{Objects: objects}

	// "hello" base64-encoded
	in := `<p>첨부</p><img src="data:image/png;base64,aGVsbG8=">`
	out := e.ExternalizeInlineImages(in, "g")

	if strings.Contains(out, "data:image/") {
		t.Errorf("Expected inline payload replaced, got %q", out)
	}
	if len(objects.uploads) != 1 {
		t.Fatalf("Expected 1 upload, got %d", len(objects.uploads))
	}
	for key, blob := range objects.uploads {
		if !strings.HasPrefix(key, "notice/g/") {
			t.Errorf("Expected key under notice/g/, got %q", key)
		}
		if !strings.HasSuffix(key, ".png") {
			t.Errorf("Expected .png key, got %q", key)
		}
		if !bytes.Equal(blob, []byte("hello")) {
			t.Errorf("Expected decoded payload, got %q", blob)
		}
		if objects.types[key] != "image/png" {
			t.Errorf("Expected image/png content type, got %q", objects.types[key])
		}
	}
}

func TestExternalizeDeduplicatesPayloads(t *testing.T) {
	objects := newFakeObjects()
	e := Externalizer{Objects: objects}

	in := `<img src="data:image/png;base64,aGVsbG8="><p>중간</p><img src="data:image/png;base64,aGVsbG8=">`
	out := e.ExternalizeInlineImages(in, "g")

	if len(objects.uploads) != 1 {
		t.Errorf("Expected identical payloads uploaded once, got %d uploads", len(objects.uploads))
	}
	if strings.Contains(out, "data:image/") {
		t.Errorf("Expected every occurrence replaced, got %q", out)
	}
	if strings.Count(out, "/storage/v1/object/public/") != 2 {
		t.Errorf("Expected both tags pointing at the uploaded object, got %q", out)
	}
}

func TestExternalizeFailureIsPerImage(t *testing.T) {
	objects := newFakeObjects()
	objects.failMime = "image/gif"
	e := Externalizer{Objects: objects}

	in := `<img src="data:image/png;base64,aGVsbG8="><img src="data:image/gif;base64,d29ybGQ=">`
	out := e.ExternalizeInlineImages(in, "g")

	if !strings.Contains(out, "data:image/gif") {
		t.Error("Expected failed image to stay embedded")
	}
	if strings.Contains(out, "data:image/png") {
		t.Error("Expected the healthy image to be externalized")
	}
	if len(objects.uploads) != 1 {
		t.Errorf("Expected 1 successful upload, got %d", len(objects.uploads))
	}
}

func TestExternalizeSkipsMalformedDataURL(t *testing.T) {
	objects := newFakeObjects()
	e := Externalizer{Objects: objects}

	// Not base64-encoded; must stay embedded rather than corrupt the document.
	in := `<img src="data:image/png;base64,not%%%base64">`
	out := e.ExternalizeInlineImages(in, "g")

	if out != in {
		t.Errorf("Expected malformed payload left alone, got %q", out)
	}
	if len(objects.uploads) != 0 {
		t.Errorf("Expected no uploads, got %d", len(objects.uploads))
	}
}

func TestExternalizeNoInlineImages(t *testing.T) {
	objects := newFakeObjects()
	e := Externalizer{Objects: objects}

	in := `<p>일반 공지</p><img src="https://example.com/a.png">`
	if out := e.ExternalizeInlineImages(in, "g"); out != in {
		t.Errorf("Expected content unchanged, got %q", out)
	}
}
