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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultShopifyAPIVersion is used when no version is configured.
const DefaultShopifyAPIVersion = "2024-10"

const shopifyPageSize = 50

const productsQuery = `query Products($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id
        title
        handle
        bodyHtml
        updatedAt
        publishedAt
        tags
        seo { title description canonicalUrl }
        images(first: 10) { nodes { url } }
        variants(first: 10) {
          nodes {
            price
            currencyCode
            priceSet { shopMoney { amount currencyCode } }
            presentmentPrices(first: 1) {
              edges { node { price { amount currencyCode } } }
            }
          }
        }
        metafields(first: 20) {
          edges { node { namespace key value } }
        }
      }
    }
  }
}`

// ShopifyClient streams products from the Shopify Admin GraphQL API,
// walking cursor pagination until hasNextPage is false.
type ShopifyClient struct {
	storeDomain string
	accessToken string
	cfg         *clientConfig

	// endpointOverride replaces the derived admin URL in tests.
	endpointOverride string
}

// NewShopifyClient creates a client for one Shopify store. The store
// domain is the myshopify hostname without scheme.
func NewShopifyClient(storeDomain, accessToken string, opts ...ClientOption) (*ShopifyClient, error) {
	if storeDomain == "" {
		return nil, ErrMissingStoreDomain
	}
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	cfg := defaultClientConfig()
	cfg.apiVersion = DefaultShopifyAPIVersion
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &ShopifyClient{
		storeDomain: storeDomain,
		accessToken: accessToken,
		cfg:         cfg,
	}, nil
}

func (c *ShopifyClient) endpoint() string {
	if c.endpointOverride != "" {
		return c.endpointOverride
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.storeDomain, c.cfg.apiVersion)
}

// ForEach fetches every product page and yields flattened product
// payloads. Each page fetch is retried per the client's retry policy.
func (c *ShopifyClient) ForEach(ctx context.Context, fn func(item map[string]any) error) error {
	var cursor string
	for {
		var page *shopifyPage
		err := RetryWithBackoff(ctx, func() error {
			var fetchErr error
			page, fetchErr = c.fetchPage(ctx, cursor)
			return fetchErr
		}, c.cfg.maxAttempts, c.cfg.baseDelay, c.cfg.maxDelay)
		if err != nil {
			return fmt.Errorf("shopify page fetch: %w", err)
		}

		for _, node := range page.nodes {
			if err := fn(flattenProductNode(node)); err != nil {
				return err
			}
		}

		if !page.hasNextPage {
			return nil
		}
		cursor = page.endCursor
	}
}

type shopifyPage struct {
	nodes       []map[string]any
	hasNextPage bool
	endCursor   string
}

func (c *ShopifyClient) fetchPage(ctx context.Context, cursor string) (*shopifyPage, error) {
	variables := map[string]any{"first": shopifyPageSize}
	if cursor != "" {
		variables["after"] = cursor
	}
	body, err := json.Marshal(map[string]any{
		"query":     productsQuery,
		"variables": variables,
	})
	if err != nil {
		return nil, Permanent(fmt.Errorf("marshal graphql request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return nil, err // network errors are retryable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		statusErr := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		if retryableStatus(resp.StatusCode) {
			return nil, statusErr
		}
		return nil, Permanent(statusErr)
	}

	var envelope struct {
		Data struct {
			Products struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Edges []struct {
					Node map[string]any `json:"node"`
				} `json:"edges"`
			} `json:"products"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		// GraphQL-level errors are often throttling, retry them
		return nil, fmt.Errorf("%w: %s", ErrGraphQL, envelope.Errors[0].Message)
	}

	page := &shopifyPage{
		hasNextPage: envelope.Data.Products.PageInfo.HasNextPage,
		endCursor:   envelope.Data.Products.PageInfo.EndCursor,
	}
	for _, edge := range envelope.Data.Products.Edges {
		if edge.Node != nil {
			page.nodes = append(page.nodes, edge.Node)
		}
	}
	return page, nil
}

// flattenProductNode unwraps the GraphQL connection nesting so adapters
// see plain lists: images.nodes becomes images, variants.nodes becomes
// variants, and metafields.edges[].node becomes metafields.
func flattenProductNode(node map[string]any) map[string]any {
	out := make(map[string]any, len(node))
	for k, v := range node {
		out[k] = v
	}
	if images, ok := connectionNodes(node["images"]); ok {
		out["images"] = images
	}
	if variants, ok := connectionNodes(node["variants"]); ok {
		for i, v := range variants {
			variant, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if prices, ok := connectionNodes(variant["presentmentPrices"]); ok {
				flat := make(map[string]any, len(variant))
				for k, val := range variant {
					flat[k] = val
				}
				flat["presentmentPrices"] = prices
				variants[i] = flat
			}
		}
		out["variants"] = variants
	}
	if metafields, ok := connectionNodes(node["metafields"]); ok {
		out["metafields"] = metafields
	}
	return out
}

// connectionNodes extracts the node list from a GraphQL connection,
// accepting both the nodes shorthand and edge/node wrapping.
func connectionNodes(v any) ([]any, bool) {
	conn, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	if nodes, ok := conn["nodes"].([]any); ok {
		return nodes, true
	}
	edges, ok := conn["edges"].([]any)
	if !ok {
		return nil, false
	}
	nodes := make([]any, 0, len(edges))
	for _, e := range edges {
		edge, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if node, ok := edge["node"]; ok {
			nodes = append(nodes, node)
		}
	}
	return nodes, true
}
