// Package updater asks the GitHub Releases API whether a newer skillkit
// release exists. It only reports; installing is left to the user.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the latest-release API URL for this repository.
	DefaultEndpoint = "https://api.github.com/repos/HendryAvila/skillkit/releases/latest"

	checkTimeout = 10 * time.Second
)

// Release holds the fields read from a GitHub release.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Result describes how the running version compares to the latest release.
type Result struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// String renders the result for the version command.
func (r *Result) String() string {
	if r.UpdateAvailable {
		return fmt.Sprintf("Update available: v%s -> v%s\n%s", r.CurrentVersion, r.LatestVersion, r.ReleaseURL)
	}
	if r.CurrentVersion == "dev" {
		return fmt.Sprintf("Development build; latest release is v%s", r.LatestVersion)
	}
	return fmt.Sprintf("Up to date (v%s)", r.CurrentVersion)
}

// Checker queries a releases endpoint.
type Checker struct {
	Endpoint  string
	Client    *http.Client
	UserAgent string
}

// NewChecker creates a Checker for DefaultEndpoint.
func NewChecker(userAgent string) *Checker {
	return &Checker{
		Endpoint:  DefaultEndpoint,
		Client:    &http.Client{Timeout: checkTimeout},
		UserAgent: userAgent,
	}
}

// Check fetches the latest release and compares it with current.
func (c *Checker) Check(ctx context.Context, current string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("updater: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("updater: check latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("updater: GitHub API returned %d", resp.StatusCode)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("updater: parse release: %w", err)
	}

	res := &Result{
		CurrentVersion: normalizeVersion(current),
		LatestVersion:  normalizeVersion(rel.TagName),
		ReleaseURL:     rel.HTMLURL,
	}
	res.UpdateAvailable = isNewer(res.CurrentVersion, res.LatestVersion)
	return res, nil
}

func normalizeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}

// isNewer compares the first three numeric dot-separated parts.
func isNewer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}
	cur := versionParts(current)
	lat := versionParts(latest)
	for i := range cur {
		if lat[i] != cur[i] {
			return lat[i] > cur[i]
		}
	}
	return false
}

func versionParts(v string) [3]int {
	var parts [3]int
	for i, s := range strings.SplitN(v, ".", 3) {
		parts[i] = leadingInt(s)
	}
	return parts
}

// leadingInt parses the leading digits of s ("3-rc1" -> 3).
func leadingInt(s string) int {
	n := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
