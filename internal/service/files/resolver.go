package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/path-finder/backend/internal/model/chat"
)

var (
	ErrNotFound       = errors.New("attachment not found")
	ErrTooLarge       = errors.New("attachment exceeds size limit")
	ErrUnsupportedURI = errors.New("unsupported attachment uri")
)

// HTTPResolver downloads attachments from the file store over HTTP(S).
type HTTPResolver struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPResolver returns a resolver with the given per-request timeout and size cap.
func NewHTTPResolver(timeout time.Duration, maxBytes int64) *HTTPResolver {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &HTTPResolver{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Resolve fetches the bytes behind ref.
func (r *HTTPResolver) Resolve(ctx context.Context, ref chat.FileRef) ([]byte, error) {
	u, err := url.Parse(ref.URI)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURI, ref.URI)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch attachment: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref.URI)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("fetch attachment: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// MemoryResolver serves attachments registered in memory, keyed by uri.
type MemoryResolver struct {
	mu    sync.RWMutex
	files map[string][]byte
	calls int
}

// NewMemoryResolver returns an empty MemoryResolver.
func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{files: make(map[string][]byte)}
}

// Put registers data under uri.
func (r *MemoryResolver) Put(uri string, data []byte) {
	r.mu.Lock()
	r.files[strings.TrimSpace(uri)] = append([]byte(nil), data...)
	r.mu.Unlock()
}

// Resolve returns a copy of the bytes registered for ref.URI.
func (r *MemoryResolver) Resolve(_ context.Context, ref chat.FileRef) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	data, ok := r.files[strings.TrimSpace(ref.URI)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref.URI)
	}
	return append([]byte(nil), data...), nil
}

// Calls reports how many times Resolve ran.
func (r *MemoryResolver) Calls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls
}
