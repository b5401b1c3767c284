// Package catalog talks to the Modrinth v2 API and turns a pack version into
// a Manifest the sync orchestrator can work with.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/uklient/uklient/pkg/errors"
	"github.com/uklient/uklient/pkg/gameversion"
	"github.com/uklient/uklient/pkg/logging"
)

// DefaultBaseURL is the public Modrinth API
const DefaultBaseURL = "https://api.modrinth.com/v2"

// Project is the subset of a Modrinth project uklient reads
type Project struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ProjectType string `json:"project_type"`
}

// Version is one published version of a project
type Version struct {
	ID            string        `json:"id"`
	ProjectID     string        `json:"project_id"`
	Name          string        `json:"name"`
	VersionNumber string        `json:"version_number"`
	Changelog     string        `json:"changelog"`
	GameVersions  []string      `json:"game_versions"`
	Loaders       []string      `json:"loaders"`
	Files         []VersionFile `json:"files"`
	DatePublished time.Time     `json:"date_published"`
}

// VersionFile is a file attached to a version
type VersionFile struct {
	URL      string            `json:"url"`
	Filename string            `json:"filename"`
	Primary  bool              `json:"primary"`
	Size     int64             `json:"size"`
	Hashes   map[string]string `json:"hashes"`
}

// PrimaryFile returns the file flagged primary, or the first one
func (v *Version) PrimaryFile() (VersionFile, bool) {
	for _, f := range v.Files {
		if f.Primary {
			return f, true
		}
	}
	if len(v.Files) > 0 {
		return v.Files[0], true
	}
	return VersionFile{}, false
}

// Supports reports whether v targets gameVersion and, when loader is set, that loader
func (v *Version) Supports(gameVersion, loader string) bool {
	if !targetsGame(v.GameVersions, gameVersion) {
		return false
	}
	return loader == "" || contains(v.Loaders, loader)
}

// targetsGame matches release versions numerically, so "1.20" and "1.20.0"
// are the same game
func targetsGame(list []string, want string) bool {
	if contains(list, want) {
		return true
	}
	wanted, err := gameversion.Parse(want)
	if err != nil {
		return false
	}
	for _, s := range list {
		if got, err := gameversion.Parse(s); err == nil && got.Compare(wanted) == 0 {
			return true
		}
	}
	return false
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

// Client is a minimal Modrinth API client
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	UserAgent string
	logger    zerolog.Logger
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, httpClient *http.Client, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		HTTP:      httpClient,
		UserAgent: userAgent,
		logger:    logging.GetLogger("catalog"),
	}
}

// GetProject fetches project metadata
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var p Project
	if err := c.get(ctx, "/project/"+url.PathEscape(projectID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListVersions returns every version of a project, newest first
func (c *Client) ListVersions(ctx context.Context, projectID string) ([]Version, error) {
	var versions []Version
	if err := c.get(ctx, "/project/"+url.PathEscape(projectID)+"/version", &versions); err != nil {
		return nil, err
	}
	c.logger.Debug().Str("project", projectID).Int("count", len(versions)).Msg("Listed versions")
	return versions, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	endpoint := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid catalog request %s", path)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifest, "catalog request %s failed", path)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.Newf(errors.ErrNotFound, "catalog has no %s", path).WithDetail("path", path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return errors.Newf(errors.ErrManifest, "catalog request %s: %s", path, resp.Status).
			WithDetail("status", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, errors.ErrManifest, fmt.Sprintf("malformed catalog response for %s", path))
	}
	return nil
}
