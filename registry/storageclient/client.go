// Package storageclient removes retired package files from the blob
// store through its HTTP control endpoint.
package storageclient

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
	bucket string
	client *http.Client
}

func NewClient(endpoint, bucket string) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}

	return &Client{
		url:    u,
		bucket: bucket,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// PurgePackage deletes every stored object under the package's prefix.
// Purging an already-purged package is a no-op on the storage side, so
// redelivery is safe.
func (c *Client) PurgePackage(ctx context.Context, name string) error {
	reqUrl := c.url.JoinPath("buckets", c.bucket, "prefixes", name)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqUrl.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach storage service: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("storage purge for %s returned %d", name, resp.StatusCode)
	}
	return nil
}
