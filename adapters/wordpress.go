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
	"github.com/google/uuid"

	"github.com/hubforge/contenthub/core"
)

// wordpressTypeMap translates WordPress post types to canonical types.
// Unknown post types fall back to post. "product" comes from WooCommerce.
var wordpressTypeMap = map[string]core.ResourceType{
	"post":    core.ResourceTypePost,
	"page":    core.ResourceTypePage,
	"product": core.ResourceTypeProduct,
}

// WordPress maps WordPress REST API post payloads into canonical resources.
type WordPress struct{}

var _ Adapter = (*WordPress)(nil)

// Source returns the platform identifier.
func (*WordPress) Source() core.SourceType {
	return core.SourceWordPress
}

// Map translates one post payload. site is the logical site identifier.
func (*WordPress) Map(payload map[string]any, tenantID uuid.UUID, site string) *core.Resource {
	content := stringField(mapField(payload, "content"), "rendered")

	attributes := make(map[string]string)
	flattenMap(attributes, mapField(payload, "meta"), "")
	flattenMap(attributes, mapField(payload, "acf"), "acf.")

	r := &core.Resource{
		TenantID:    tenantID,
		Source:      core.SourceWordPress,
		SourceSite:  site,
		SourceID:    Stringify(payload["id"]),
		Type:        wordpressType(stringField(payload, "type", "post_type")),
		Slug:        stringField(payload, "slug"),
		Title:       maybeRendered(payload["title"]),
		BodyHTML:    content,
		BodyText:    StripHTML(content),
		Images:      wordpressImages(payload),
		Tags:        NormalizeTags(payload["tags"]),
		Attributes:  attributes,
		SEO:         wordpressSEO(mapField(payload, "yoast_head_json")),
		Locale:      stringField(payload, "lang"),
		URL:         stringField(payload, "link"),
		PublishedAt: ParseTime(payload["date_gmt"]),
		UpdatedAt:   updatedAtOrNow(payload["modified_gmt"], payload["date_gmt"]),
	}
	return r
}

func wordpressType(postType string) core.ResourceType {
	if t, ok := wordpressTypeMap[postType]; ok {
		return t
	}
	return core.ResourceTypePost
}

// maybeRendered unwraps the {"rendered": …} envelope WordPress uses for
// title fields in the REST context, accepting a bare string too.
func maybeRendered(field any) string {
	switch v := field.(type) {
	case map[string]any:
		return stringField(v, "rendered")
	case string:
		return v
	default:
		return ""
	}
}

// wordpressImages collects featured media URLs from the _embedded block.
func wordpressImages(payload map[string]any) []string {
	embedded := mapField(payload, "_embedded")
	if embedded == nil {
		return nil
	}
	var urls []string
	for _, media := range sliceField(embedded, "wp:featuredmedia") {
		if u := stringField(media, "source_url"); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// wordpressSEO keeps only the non-empty Yoast fields under normalized keys.
func wordpressSEO(yoast map[string]any) map[string]string {
	out := make(map[string]string)
	if v := stringField(yoast, "title"); v != "" {
		out["title"] = v
	}
	if v := stringField(yoast, "description"); v != "" {
		out["description"] = v
	}
	if v, ok := yoast["schema"]; ok && v != nil {
		if s := Stringify(v); s != "" {
			out["schema"] = s
		}
	}
	return out
}
