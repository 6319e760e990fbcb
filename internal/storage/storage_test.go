package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mindhouselabs/miod/internal/config"
)

// fakeObjectStore speaks just enough of the S3 wire protocol for the
// client to upload, stat, and fetch objects.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeObjectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Has("location") {
		// Bucket-location lookup; the client issues this before any
		// other call and parses the XML body.
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`)
		return
	}

	_, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case key == "":
		// Bucket-level existence check.
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		b, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") {
			b = decodeAWSChunked(b)
		}
		f.objects[key] = b
		w.Header().Set("ETag", `"fake-etag"`)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet || r.Method == http.MethodHead:
		b, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(b)))
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.Header().Set("ETag", `"fake-etag"`)
		if r.Method == http.MethodGet {
			_, _ = w.Write(b)
		}
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

// decodeAWSChunked strips the aws-chunked framing the client wraps
// around streaming-signed PUT bodies: hex size and chunk signature per
// chunk, CRLF-delimited, ending with a zero-size chunk.
func decodeAWSChunked(b []byte) []byte {
	var out []byte
	for {
		i := bytes.Index(b, []byte("\r\n"))
		if i < 0 {
			return out
		}
		sizeHex, _, _ := strings.Cut(string(b[:i]), ";")
		n, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil || n == 0 {
			return out
		}
		b = b[i+2:]
		if int64(len(b)) < n {
			return out
		}
		out = append(out, b[:n]...)
		b = b[n:]
		b = bytes.TrimPrefix(b, []byte("\r\n"))
	}
}

func newTestService(t *testing.T) (*Service, *fakeObjectStore) {
	t.Helper()

	fake := &fakeObjectStore{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := New(context.Background(), config.StorageConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "test-access",
		SecretKey: "test-secret",
		Bucket:    "miod-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return svc, fake
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	body := []byte("week 3: sleep before midnight")

	err := svc.Upload(ctx, "reports/week-3.txt", bytes.NewReader(body), int64(len(body)), "text/plain")
	require.NoError(t, err)

	rc, err := svc.Download(ctx, "reports/week-3.txt")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestDownloadMissingKey(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Download(context.Background(), "reports/nope.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reports/nope.txt")
}

func TestDelete(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	fake.objects["documents/user-1/old.pdf"] = []byte("stale")
	require.NoError(t, svc.Delete(ctx, "documents/user-1/old.pdf"))
	assert.NotContains(t, fake.objects, "documents/user-1/old.pdf")

	// Missing keys delete cleanly.
	assert.NoError(t, svc.Delete(ctx, "documents/user-1/never-there.pdf"))
}

func TestSignedURLs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	get, err := svc.SignedGetURL(ctx, "documents/user-1/intake.pdf")
	require.NoError(t, err)
	assert.Contains(t, get, "/miod-test/documents/user-1/intake.pdf")
	assert.Contains(t, get, "X-Amz-Signature=")

	put, err := svc.SignedPutURL(ctx, "documents/user-1/intake.pdf")
	require.NoError(t, err)
	assert.Contains(t, put, "/miod-test/documents/user-1/intake.pdf")
	assert.Contains(t, put, "X-Amz-Signature=")
	assert.NotEqual(t, get, put)
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"reports/week-3.pdf", "application/pdf"},
		{"docs/intake.json", "application/json"},
		{"uploads/voice-note.bin", "application/octet-stream"},
		{"no-extension", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContentTypeFor(tt.key), tt.key)
	}
}
