package storage

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		BaseURL:    server.URL,
		Bucket:     "images",
		APIKey:     "test-key",
		httpClient: server.Client(),
	}
}

func TestUpload(t *testing.T) {
	var gotPath, gotAuth, gotType, gotUpsert string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotUpsert = r.Header.Get("x-upsert")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(server)
	err := c.Upload("notice/g/1-abc.png", []byte("payload"), "image/png", false)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if gotPath != "/storage/v1/object/images/notice/g/1-abc.png" {
		t.Errorf("Unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected Bearer test-key, got %s", gotAuth)
	}
	if gotType != "image/png" {
		t.Errorf("Expected image/png, got %s", gotType)
	}
	if gotUpsert != "false" {
		t.Errorf("Expected x-upsert false, got %s", gotUpsert)
	}
	if string(gotBody) != "payload" {
		t.Errorf("Unexpected body: %s", gotBody)
	}
}

func TestUploadOverwriteHeader(t *testing.T) {
	var gotUpsert string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUpsert = r.Header.Get("x-upsert")
	}))
	defer server.Close()

	c := newTestClient(server)
	if err := c.Upload("k", nil, "image/png", true); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if gotUpsert != "true" {
		t.Errorf("Expected x-upsert true, got %s", gotUpsert)
	}
}

func TestUploadConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"Duplicate"}`))
	}))
	defer server.Close()

	c := newTestClient(server)
	err := c.Upload("k", []byte("x"), "image/png", false)
	if err == nil {
		t.Fatal("Expected error on 409")
	}
	if !strings.Contains(err.Error(), "409") {
		t.Errorf("Expected status in error, got %v", err)
	}
}

func TestUploadUnconfigured(t *testing.T) {
	c := &Client{}
	if err := c.Upload("k", []byte("x"), "image/png", false); err == nil {
		t.Fatal("Expected error when storage is not configured")
	}
}

func TestPublicURL(t *testing.T) {
	c := &Client{BaseURL: "https://proj.supabase.co", Bucket: "images"}
	got := c.PublicURL("notice/g/1-abc.png")
	want := "https://proj.supabase.co/storage/v1/object/public/images/notice/g/1-abc.png"
	if got != want {
		t.Errorf("PublicURL = %q, want %q", got, want)
	}

	empty := &Client{}
	if got := empty.PublicURL("k"); got != "" {
		t.Errorf("Expected empty URL when unconfigured, got %q", got)
	}
}

func TestBuildKey(t *testing.T) {
	key := BuildKey("notice", "group-1", "PNG")
	if !strings.HasPrefix(key, "notice/group-1/") {
		t.Errorf("Expected prefix notice/group-1/, got %q", key)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Errorf("Expected lowercased extension, got %q", key)
	}

	if k := BuildKey("notice", "g", ""); !strings.HasSuffix(k, ".png") {
		t.Errorf("Expected default png extension, got %q", k)
	}
	if k := BuildKey("notice", "g", ".jpeg"); !strings.HasSuffix(k, ".jpeg") {
		t.Errorf("Expected dot stripped, got %q", k)
	}

	if BuildKey("notice", "g", "png") == BuildKey("notice", "g", "png") {
		t.Error("Expected distinct keys on repeated calls")
	}
}
