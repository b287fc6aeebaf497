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


package adapters

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/hubforge/contenthub/core"
)

// Shopify maps Shopify product payloads into canonical resources.
// Payloads are expected in the flat shape the Shopify source client
// produces: images, variants and metafields already unwrapped from the
// GraphQL edge/node structure.
type Shopify struct{}

var _ Adapter = (*Shopify)(nil)

// Source returns the platform identifier.
func (*Shopify) Source() core.SourceType {
	return core.SourceShopify
}

// Map translates one product payload. site is the store domain.
func (*Shopify) Map(payload map[string]any, tenantID uuid.UUID, site string) *core.Resource {
	bodyHTML := stringField(payload, "bodyHtml", "body_html")
	variants := sliceField(payload, "variants")
	handle := stringField(payload, "handle")

	r := &core.Resource{
		TenantID:    tenantID,
		Source:      core.SourceShopify,
		SourceSite:  site,
		SourceID:    Stringify(payload["id"]),
		Type:        core.ResourceTypeProduct,
		Slug:        handle,
		Title:       stringField(payload, "title"),
		BodyHTML:    bodyHTML,
		BodyText:    StripHTML(bodyHTML),
		Images:      shopifyImages(sliceField(payload, "images")),
		Price:       shopifyPrice(variants),
		Currency:    shopifyCurrency(variants),
		Tags:        NormalizeTags(payload["tags"]),
		Attributes:  shopifyMetafields(sliceField(payload, "metafields")),
		SEO:         shopifySEO(mapField(payload, "seo")),
		URL:         fmt.Sprintf("https://%s/products/%s", site, handle),
		PublishedAt: ParseTime(firstPresent(payload, "publishedAt", "published_at")),
		UpdatedAt:   updatedAtOrNow(firstPresent(payload, "updatedAt", "updated_at"), firstPresent(payload, "publishedAt", "published_at")),
	}
	return r
}

// firstPresent returns the first non-nil value among keys, for fields
// Shopify spells differently between REST and GraphQL payloads.
func firstPresent(payload map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := payload[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func shopifyImages(images []map[string]any) []string {
	var urls []string
	for _, img := range images {
		if u := stringField(img, "url", "src"); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// shopifyPrice reads the first variant's price, preferring the plain
// field over the priceSet money bag.
func shopifyPrice(variants []map[string]any) *float64 {
	if len(variants) == 0 {
		return nil
	}
	first := variants[0]

	raw := first["price"]
	if raw == nil {
		raw = shopMoney(first)["amount"]
	}

	switch v := raw.(type) {
	case float64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}

func shopifyCurrency(variants []map[string]any) string {
	if len(variants) == 0 {
		return ""
	}
	first := variants[0]

	if c := stringField(first, "currencyCode"); c != "" {
		return c
	}
	if c, ok := shopMoney(first)["currencyCode"].(string); ok && c != "" {
		return c
	}

	// Last resort: the first presentment price.
	presentment := sliceField(first, "presentmentPrices")
	if len(presentment) > 0 {
		if price := mapField(presentment[0], "price"); price != nil {
			if c, ok := price["currencyCode"].(string); ok {
				return c
			}
		}
	}
	return ""
}

func shopMoney(variant map[string]any) map[string]any {
	priceSet := mapField(variant, "priceSet")
	if priceSet == nil {
		return nil
	}
	return mapField(priceSet, "shopMoney")
}

// shopifyMetafields flattens metafield entries into "namespace.key"
// attribute keys with stringified values.
func shopifyMetafields(metafields []map[string]any) map[string]string {
	attrs := make(map[string]string)
	for _, field := range metafields {
		namespace := stringField(field, "namespace")
		if namespace == "" {
			namespace = "default"
		}
		name := namespace
		if key := stringField(field, "key"); key != "" {
			name = namespace + "." + key
		}

		value := field["value"]
		if value == nil {
			value = field["stringValue"]
		}
		if value == nil {
			value = field["jsonValue"]
		}
		attrs[name] = Stringify(value)
	}
	return attrs
}

// shopifySEO keeps only the non-empty SEO fields under normalized keys.
func shopifySEO(seo map[string]any) map[string]string {
	out := make(map[string]string)
	if v := stringField(seo, "title"); v != "" {
		out["title"] = v
	}
	if v := stringField(seo, "description"); v != "" {
		out["description"] = v
	}
	if v := stringField(seo, "canonicalUrl"); v != "" {
		out["canonical_url"] = v
	}
	return out
}
