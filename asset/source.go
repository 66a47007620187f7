package asset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Source is a readable config, script or texture stream that lives either
// on the local filesystem or behind an http(s) URL.
type Source struct {
	io.ReadCloser
	location *url.URL
}

// Location returns the path or URL the source was opened from.
func (s *Source) Location() string {
	return s.location.String()
}

// Name returns the last path element of the source location.
func (s *Source) Name() string {
	return filepath.Base(s.location.Path)
}

// IsRemote returns true if the source is streamed over http/https.
func (s *Source) IsRemote() bool {
	return s.location.Scheme != ""
}

// Open a source stream. Locations without a scheme are treated as local
// file paths. The caller must close the returned source.
func OpenSource(ctx context.Context, location string) (*Source, error) {
	loc, err := url.Parse(strings.Replace(location, `\`, `/`, -1))
	if err != nil {
		return nil, fmt.Errorf("asset: invalid source location %q: %w", location, err)
	}

	var reader io.ReadCloser
	switch loc.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(loc.Path))
		if err != nil {
			return nil, fmt.Errorf("asset: could not open %q: %w", location, err)
		}
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("asset: could not fetch '%s': %w", loc.String(), err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("asset: could not fetch '%s': %w", loc.String(), err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("asset: could not fetch '%s': status %d", loc.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, fmt.Errorf("asset: unsupported scheme '%s'", loc.Scheme)
	}

	return &Source{
		ReadCloser: reader,
		location:   loc,
	}, nil
}

// ReadSource opens location and returns its entire contents.
func ReadSource(ctx context.Context, location string) ([]byte, error) {
	src, err := OpenSource(ctx, location)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("asset: could not read %q: %w", location, err)
	}
	return data, nil
}
