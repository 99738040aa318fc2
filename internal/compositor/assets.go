package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"reelsmaker/internal/domain"
)

// AssetLoader resolves a scene visual reference to a decoded image.
type AssetLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Loader reads site-relative references such as "/assets/neon-city.jpg"
// from Root and fetches absolute http(s) references over the network.
type Loader struct {
	Root   string
	Client *http.Client
}

// NewLoader builds a Loader rooted at dir.
func NewLoader(dir string, client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{Root: dir, Client: client}
}

func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("compositor: empty visual reference")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return l.fetch(ctx, ref)
	}
	rel := filepath.FromSlash(strings.TrimLeft(ref, "/"))
	if rel == "" || strings.HasPrefix(filepath.Clean(rel), "..") {
		return nil, fmt.Errorf("compositor: invalid visual reference %q", ref)
	}
	f, err := os.Open(filepath.Join(l.Root, rel))
	if err != nil {
		return nil, fmt.Errorf("compositor: open visual: %w", err)
	}
	defer f.Close()
	return decode(f, ref)
}

func (l *Loader) fetch(ctx context.Context, ref string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("compositor: build visual request: %w", err)
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compositor: fetch visual: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("compositor: fetch visual %s: status %d", ref, resp.StatusCode)
	}
	return decode(resp.Body, ref)
}

func decode(r io.Reader, ref string) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("compositor: decode visual %s: %w", ref, err)
	}
	return img, nil
}

// LoadVisuals decodes every distinct scene visual concurrently. Any failure
// aborts the whole set.
func LoadVisuals(ctx context.Context, loader AssetLoader, scenes []domain.Scene) (map[string]image.Image, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]image.Image)
	)
	g, gctx := errgroup.WithContext(ctx)
	seen := make(map[string]bool)
	for _, scene := range scenes {
		ref := scene.Visual
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		g.Go(func() error {
			img, err := loader.Load(gctx, ref)
			if err != nil {
				return err
			}
			mu.Lock()
			out[ref] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
