// Package indexclient talks to the downstream index service that
// mirrors the registry's contents in git and sparse representations.
package indexclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	url    *url.URL
	client *http.Client
}

func NewClient(host string) (*Client, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, err
	}

	return &Client{
		url: u,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SyncGit asks the index service to regenerate the git index entry for
// a package. For a retired package the entry disappears.
func (c *Client) SyncGit(ctx context.Context, name string) error {
	return c.sync(ctx, "git", name)
}

// SyncSparse does the same for the sparse (HTTP) index.
func (c *Client) SyncSparse(ctx context.Context, name string) error {
	return c.sync(ctx, "sparse", name)
}

func (c *Client) sync(ctx context.Context, repr, name string) error {
	reqUrl := c.url.JoinPath("sync", repr, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqUrl.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach index service: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("index sync for %s returned %d", name, resp.StatusCode)
	}
	return nil
}
