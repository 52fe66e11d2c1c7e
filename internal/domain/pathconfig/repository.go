package pathconfig

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
	"github.com/GriffinCanCode/webshell/backend/internal/providers/http/client"
)

// Repository reads path configuration bytes from the app bundle, the network
// and the on-disk cache of the last good remote copy.
type Repository struct {
	client   *client.Client
	bundle   fs.FS
	cacheDir string
}

// NewRepository creates a repository. A nil bundle reads bundled files from
// the OS filesystem; an empty cacheDir disables caching.
func NewRepository(httpClient *client.Client, bundle fs.FS, cacheDir string) *Repository {
	return &Repository{
		client:   httpClient,
		bundle:   bundle,
		cacheDir: cacheDir,
	}
}

// Bundled reads a file shipped with the app.
func (r *Repository) Bundled(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if r.bundle != nil {
		data, err = fs.ReadFile(r.bundle, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled path configuration: %w", err)
	}
	return data, nil
}

// Remote downloads the configuration at url.
func (r *Repository) Remote(ctx context.Context, url string) ([]byte, error) {
	if r.client == nil {
		return nil, fmt.Errorf("no http client configured for remote path configuration")
	}

	req, err := r.client.Request(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetHeader("Accept", "application/json")

	resp, err := r.client.ExecuteWithBreaker(func() (*resty.Response, error) {
		return req.Get(url)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch path configuration: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch path configuration: %w", visit.HTTPErrorFrom(resp.StatusCode()))
	}
	return resp.Body(), nil
}

// Cached returns the last good remote copy for url.
func (r *Repository) Cached(url string) ([]byte, bool) {
	if r.cacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(r.cachePath(url))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Cache stores data as the last good remote copy for url.
func (r *Repository) Cache(url string, data []byte) error {
	if r.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(r.cacheDir, "path-configuration-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.cachePath(url)); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

func (r *Repository) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(r.cacheDir, hex.EncodeToString(sum[:])+".json")
}
