package adapters

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubforge/contenthub/core"
)

func shopifyProductPayload() map[string]any {
	return map[string]any{
		"id":       "gid://shopify/Product/42",
		"handle":   "blue-shirt",
		"title":    "Blue Shirt",
		"bodyHtml": "<p>Soft &amp; <b>blue</b></p>",
		"tags":     "summer, sale ,shirts",
		"images": []any{
			map[string]any{"url": "https://cdn.example.com/a.jpg"},
			map[string]any{"src": "https://cdn.example.com/b.jpg"},
			map[string]any{"alt": "no url here"},
		},
		"variants": []any{
			map[string]any{
				"price":        "19.99",
				"currencyCode": "EUR",
			},
		},
		"metafields": []any{
			map[string]any{"namespace": "custom", "key": "color", "value": "red"},
			map[string]any{"namespace": "specs", "key": "sizes", "value": []any{"s", "m", "l"}},
		},
		"seo": map[string]any{
			"title":       "Blue Shirt | Shop",
			"description": "",
		},
		"publishedAt": "2024-03-01T10:00:00Z",
		"updatedAt":   "2024-04-02T11:30:00Z",
	}
}

func TestShopifyMap(t *testing.T) {
	tenant := uuid.New()
	adapter := &Shopify{}

	r := adapter.Map(shopifyProductPayload(), tenant, "store.myshopify.com")
	require.NotNil(t, r)

	assert.Equal(t, tenant, r.TenantID)
	assert.Equal(t, core.SourceShopify, r.Source)
	assert.Equal(t, "store.myshopify.com", r.SourceSite)
	assert.Equal(t, "gid://shopify/Product/42", r.SourceID)
	assert.Equal(t, core.ResourceTypeProduct, r.Type)
	assert.Equal(t, "blue-shirt", r.Slug)
	assert.Equal(t, "Blue Shirt", r.Title)
	assert.Equal(t, "<p>Soft &amp; <b>blue</b></p>", r.BodyHTML)
	assert.Equal(t, "Soft & blue", r.BodyText)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, r.Images)
	assert.Equal(t, []string{"summer", "sale", "shirts"}, r.Tags)
	assert.Equal(t, "https://store.myshopify.com/products/blue-shirt", r.URL)

	require.NotNil(t, r.Price)
	assert.InDelta(t, 19.99, *r.Price, 0.0001)
	assert.Equal(t, "EUR", r.Currency)

	assert.Equal(t, "red", r.Attributes["custom.color"])
	assert.Equal(t, "s,m,l", r.Attributes["specs.sizes"])

	assert.Equal(t, "Blue Shirt | Shop", r.SEO["title"])
	assert.NotContains(t, r.SEO, "description", "empty SEO fields are dropped")

	require.NotNil(t, r.PublishedAt)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), r.PublishedAt.UTC())
	assert.Equal(t, time.Date(2024, 4, 2, 11, 30, 0, 0, time.UTC), r.UpdatedAt.UTC())
}

func TestShopifyMapPriceSetFallback(t *testing.T) {
	payload := map[string]any{
		"id": float64(7),
		"variants": []any{
			map[string]any{
				"priceSet": map[string]any{
					"shopMoney": map[string]any{"amount": "42.50", "currencyCode": "USD"},
				},
			},
		},
	}

	r := (&Shopify{}).Map(payload, uuid.New(), "store.myshopify.com")

	assert.Equal(t, "7", r.SourceID, "numeric ids stringify without decimals")
	require.NotNil(t, r.Price)
	assert.InDelta(t, 42.50, *r.Price, 0.0001)
	assert.Equal(t, "USD", r.Currency)
}

func TestShopifyMapTotality(t *testing.T) {
	// A payload stripped of every optional field still maps cleanly.
	r := (&Shopify{}).Map(map[string]any{"id": "1"}, uuid.New(), "store.myshopify.com")

	assert.Equal(t, "1", r.SourceID)
	assert.Empty(t, r.Title)
	assert.Empty(t, r.BodyHTML)
	assert.Empty(t, r.BodyText)
	assert.Empty(t, r.Images)
	assert.Nil(t, r.Price)
	assert.Empty(t, r.Currency)
	assert.Empty(t, r.Tags)
	assert.Empty(t, r.Attributes)
	assert.Empty(t, r.SEO)
	assert.Nil(t, r.PublishedAt)
	assert.False(t, r.UpdatedAt.IsZero(), "updated_at falls back to ingestion time")
}

func TestShopifyMapTagsArray(t *testing.T) {
	payload := map[string]any{
		"id":   "1",
		"tags": []any{"a", "b", "c"},
	}
	r := (&Shopify{}).Map(payload, uuid.New(), "store.myshopify.com")
	assert.Equal(t, []string{"a", "b", "c"}, r.Tags)
}

func TestShopifyMapUpdatedAtFallsBackToPublished(t *testing.T) {
	payload := map[string]any{
		"id":          "1",
		"publishedAt": "2024-03-01T10:00:00Z",
		"updatedAt":   "not a timestamp",
	}
	r := (&Shopify{}).Map(payload, uuid.New(), "store.myshopify.com")
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), r.UpdatedAt.UTC())
}
