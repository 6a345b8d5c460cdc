// Package versions fetches the published release catalogs for the supported
// server distributions so the UI can offer a version picker.
package versions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultMojangManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	defaultPaperProjectURL   = "https://api.papermc.io/v2/projects/paper"
)

// Client queries the upstream version catalogs.
type Client struct {
	http *http.Client

	mojangManifestURL string
	paperProjectURL   string
}

// NewClient returns a Client with a bounded request timeout.
func NewClient() *Client {
	return &Client{
		http:              &http.Client{Timeout: 15 * time.Second},
		mojangManifestURL: defaultMojangManifestURL,
		paperProjectURL:   defaultPaperProjectURL,
	}
}

// List returns the release versions for a server type, newest first.
// Vanilla and Fabric servers share the Mojang release catalog; Fabric's
// loader is version-agnostic.
func (c *Client) List(ctx context.Context, serverType string) ([]string, error) {
	switch serverType {
	case "vanilla", "fabric":
		return c.mojangReleases(ctx)
	case "paper":
		return c.paperVersions(ctx)
	default:
		return nil, fmt.Errorf("unknown server type %q", serverType)
	}
}

func (c *Client) mojangReleases(ctx context.Context) ([]string, error) {
	var manifest struct {
		Versions []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"versions"`
	}
	if err := c.getJSON(ctx, c.mojangManifestURL, &manifest); err != nil {
		return nil, fmt.Errorf("mojang manifest: %w", err)
	}

	var releases []string
	for _, v := range manifest.Versions {
		if v.Type == "release" {
			releases = append(releases, v.ID)
		}
	}
	return releases, nil
}

func (c *Client) paperVersions(ctx context.Context) ([]string, error) {
	var project struct {
		Versions []string `json:"versions"`
	}
	if err := c.getJSON(ctx, c.paperProjectURL, &project); err != nil {
		return nil, fmt.Errorf("papermc project: %w", err)
	}

	// The API lists oldest first; reverse for newest-first ordering.
	out := make([]string, len(project.Versions))
	for i, v := range project.Versions {
		out[len(project.Versions)-1-i] = v
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
