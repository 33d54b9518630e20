// Package scraper provides functionality to load export content from disk or fetch it from URLs
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single remote fetch
const DefaultTimeout = 30 * time.Second

// Source reads the full content of an export identified by a path or URL
type Source struct {
	client *http.Client
	log    logrus.FieldLogger
}

// NewSource creates a Source whose remote fetches time out after timeout
func NewSource(timeout time.Duration, log logrus.FieldLogger) *Source {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = discardLogger()
	}
	return &Source{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// IsRemote reports whether location is an http(s) URL
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// FilePath returns the path component used for extension detection: the URL path for
// remote locations, the location itself otherwise.
func FilePath(location string) string {
	if !IsRemote(location) {
		return location
	}
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	return path.Clean(u.Path)
}

// Read returns the content at location, fetching it when it is a URL
func (s *Source) Read(ctx context.Context, location string) (string, error) {
	if IsRemote(location) {
		return s.FetchURL(ctx, location)
	}

	content, err := os.ReadFile(location)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(content), nil
}

// FetchURL downloads the content at rawURL and returns it as a string
func (s *Source) FetchURL(ctx context.Context, rawURL string) (string, error) {
	s.log.WithField("url", rawURL).Debug("Fetching URL")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("error building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("non-200 status code: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"content_type":   resp.Header.Get("Content-Type"),
		"content_length": len(body),
	}).Debug("Fetched URL")

	return string(body), nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
