package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"bim-viewer/internal/viewer/model"
)

// ============================================================
// Model Loader
// ============================================================

// Loader fetches the parsed-model document from an http(s) URL or a
// local path and decodes it. Retrieval happens before the core sees
// any data; the core itself never blocks on I/O.
type Loader struct {
	client *http.Client
}

func New() *Loader {
	return &Loader{client: &http.Client{Timeout: 60 * time.Second}}
}

// Fetch loads a model from a URL or file path.
func (l *Loader) Fetch(ctx context.Context, source string) (*model.Model, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetchURL(ctx, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return Decode(data)
}

func (l *Loader) fetchURL(ctx context.Context, url string) (*model.Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download model: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read model body: %w", err)
	}
	return Decode(data)
}

// Decode parses a model document and checks the minimum the core
// relies on: unique, non-empty element ids.
func Decode(data []byte) (*model.Model, error) {
	var m model.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	seen := make(map[string]struct{}, len(m.Elements))
	for _, e := range m.Elements {
		if e.ID == "" {
			return nil, fmt.Errorf("decode model: element with empty id")
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("decode model: duplicate element id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return &m, nil
}
