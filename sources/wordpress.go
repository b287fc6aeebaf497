// Copyright 2026 Hubforge Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const wordpressPageSize = 100

// defaultWordPressTypes are the REST collections synced when none are
// configured explicitly.
var defaultWordPressTypes = []string{"posts", "pages"}

// WordPressClient streams items from the WordPress REST API, walking
// page numbers until X-WP-TotalPages is exhausted.
type WordPressClient struct {
	baseURL   string
	authToken string
	cfg       *clientConfig
}

// NewWordPressClient creates a client for one WordPress site. baseURL
// is the site root; the wp-json prefix is appended here. authToken is
// optional and sent as a bearer token when present.
func NewWordPressClient(baseURL, authToken string, opts ...ClientOption) (*WordPressClient, error) {
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	cfg := defaultClientConfig()
	cfg.itemTypes = defaultWordPressTypes
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &WordPressClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		cfg:       cfg,
	}, nil
}

// ForEach fetches every configured item type page by page and yields
// raw REST payloads. The item's collection is recorded under "type"
// when the payload doesn't carry one, so adapters can classify it.
func (c *WordPressClient) ForEach(ctx context.Context, fn func(item map[string]any) error) error {
	for _, itemType := range c.cfg.itemTypes {
		if err := c.forEachOfType(ctx, itemType, fn); err != nil {
			return err
		}
	}
	return nil
}

func (c *WordPressClient) forEachOfType(ctx context.Context, itemType string, fn func(item map[string]any) error) error {
	for page := 1; ; page++ {
		var items []map[string]any
		var totalPages int
		err := RetryWithBackoff(ctx, func() error {
			var fetchErr error
			items, totalPages, fetchErr = c.fetchPage(ctx, itemType, page)
			return fetchErr
		}, c.cfg.maxAttempts, c.cfg.baseDelay, c.cfg.maxDelay)
		if err != nil {
			return fmt.Errorf("wordpress %s page %d: %w", itemType, page, err)
		}

		if len(items) == 0 {
			return nil
		}
		for _, item := range items {
			if _, ok := item["type"]; !ok {
				item["type"] = strings.TrimSuffix(itemType, "s")
			}
			if err := fn(item); err != nil {
				return err
			}
		}

		if totalPages > 0 && page >= totalPages {
			return nil
		}
	}
}

func (c *WordPressClient) fetchPage(ctx context.Context, itemType string, page int) ([]map[string]any, int, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wp/v2/%s", c.baseURL, itemType)

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(wordpressPageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("_embed", "1")
	// The edit context exposes meta and acf, but needs authentication.
	if c.authToken != "" {
		params.Set("context", "edit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, Permanent(err)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return nil, 0, err // network errors are retryable
	}
	defer resp.Body.Close()

	// Requesting a page past the end returns 400 with rest_post_invalid_page_number.
	if resp.StatusCode == http.StatusBadRequest && page > 1 {
		io.Copy(io.Discard, resp.Body)
		return nil, 0, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		statusErr := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		if retryableStatus(resp.StatusCode) {
			return nil, 0, statusErr
		}
		return nil, 0, Permanent(statusErr)
	}

	totalPages, _ := strconv.Atoi(resp.Header.Get("X-WP-TotalPages"))

	var items []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, 0, fmt.Errorf("decode wordpress response: %w", err)
	}
	return items, totalPages, nil
}
