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


package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hubforge/contenthub/core"
	"github.com/hubforge/contenthub/storage"
)

const defaultSearchLimit = 50

// repository implements storage.Repository on a shared Backend.
type repository struct {
	backend *Backend
}

var _ storage.Repository = (*repository)(nil)

// NewRepository connects to PostgreSQL, ensures the schema and returns
// the combined repository.
func NewRepository(ctx context.Context, dsn string, opts ...Option) (storage.Repository, error) {
	backend, err := OpenBackend(ctx, dsn, opts...)
	if err != nil {
		return nil, err
	}
	return &repository{backend: backend}, nil
}

// Close closes the underlying connection pool.
func (r *repository) Close() error {
	return r.backend.Close()
}

const resourceColumns = `id, tenant_id, source, source_site, source_id, resource_type,
slug, title, body_html, body_text, images, price, currency, tags,
attributes, seo, locale, url, published_at, updated_at, embedding`

// UpsertResources writes a batch of resources atomically. Identity keys
// already present for the tenant keep their stored ID; new ones are
// minted a time-ordered UUID. The stored embedding is never touched
// here, only the content columns change.
func (r *repository) UpsertResources(ctx context.Context, tenantID uuid.UUID, resources []*core.Resource) ([]*core.Resource, error) {
	if len(resources) == 0 {
		return nil, nil
	}
	for _, res := range resources {
		res.TenantID = tenantID
		if err := core.ValidateResource(res); err != nil {
			return nil, err
		}
	}

	err := r.backend.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		if err := r.ensureIDs(ctx, tx, tenantID, resources); err != nil {
			return err
		}
		for _, res := range resources {
			if err := r.upsertRow(ctx, tx, res); err != nil {
				return fmt.Errorf("upsert %s/%s: %w", res.Source, res.SourceID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.backend.logger.Debug("resources upserted", "tenant", tenantID, "count", len(resources))
	return resources, nil
}

// ensureIDs resolves surrogate IDs for the batch: one lookup for all
// identity keys, then minting for the rest. Duplicate keys within the
// batch share one ID, so the last payload wins on conflict.
func (r *repository) ensureIDs(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, resources []*core.Resource) error {
	keys := make([]core.IdentityKey, 0, len(resources))
	seen := make(map[core.IdentityKey]bool, len(resources))
	for _, res := range resources {
		key := res.Identity()
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	args := make([]any, 0, 1+3*len(keys))
	args = append(args, tenantID)
	tuples := make([]string, 0, len(keys))
	for i, key := range keys {
		tuples = append(tuples, fmt.Sprintf("($%d, $%d, $%d)", 3*i+2, 3*i+3, 3*i+4))
		args = append(args, string(key.Source), key.SourceSite, key.SourceID)
	}

	query := fmt.Sprintf(`SELECT source, source_site, source_id, id
FROM hub_resources
WHERE tenant_id = $1 AND (source, source_site, source_id) IN (%s)`, strings.Join(tuples, ", "))

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("lookup identity keys: %w", err)
	}
	defer rows.Close()

	ids := make(map[core.IdentityKey]uuid.UUID, len(keys))
	for rows.Next() {
		var key core.IdentityKey
		var id uuid.UUID
		if err := rows.Scan(&key.Source, &key.SourceSite, &key.SourceID, &id); err != nil {
			return err
		}
		ids[key] = id
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, res := range resources {
		key := res.Identity()
		id, ok := ids[key]
		if !ok {
			id, err = uuid.NewV7()
			if err != nil {
				return fmt.Errorf("mint id: %w", err)
			}
			ids[key] = id
		}
		res.ID = id
	}
	return nil
}

// upsertRow writes one resource under a savepoint. A unique violation
// on the identity key means another writer minted an ID for the same
// key concurrently; the savepoint is rolled back, the winner's ID
// adopted and the write retried once.
func (r *repository) upsertRow(ctx context.Context, tx pgx.Tx, res *core.Resource) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return err
	}
	if err = execUpsert(ctx, sp, res); err == nil {
		return sp.Commit(ctx)
	}
	sp.Rollback(ctx)

	if !isUniqueViolation(err, "uq_resource_origin") {
		return err
	}

	var winner uuid.UUID
	lookupErr := tx.QueryRow(ctx, `SELECT id FROM hub_resources
WHERE tenant_id = $1 AND source = $2 AND source_site = $3 AND source_id = $4`,
		res.TenantID, string(res.Source), res.SourceSite, res.SourceID).Scan(&winner)
	if lookupErr != nil {
		return fmt.Errorf("%w: resolve winner: %w", storage.ErrDuplicateKey, lookupErr)
	}
	res.ID = winner

	sp, err = tx.Begin(ctx)
	if err != nil {
		return err
	}
	if err = execUpsert(ctx, sp, res); err != nil {
		sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}

func execUpsert(ctx context.Context, tx pgx.Tx, res *core.Resource) error {
	_, err := tx.Exec(ctx, `INSERT INTO hub_resources (
	id, tenant_id, source, source_site, source_id, resource_type,
	slug, title, body_html, body_text, images, price, currency, tags,
	attributes, seo, locale, url, published_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
ON CONFLICT (id) DO UPDATE SET
	resource_type = EXCLUDED.resource_type,
	slug          = EXCLUDED.slug,
	title         = EXCLUDED.title,
	body_html     = EXCLUDED.body_html,
	body_text     = EXCLUDED.body_text,
	images        = EXCLUDED.images,
	price         = EXCLUDED.price,
	currency      = EXCLUDED.currency,
	tags          = EXCLUDED.tags,
	attributes    = EXCLUDED.attributes,
	seo           = EXCLUDED.seo,
	locale        = EXCLUDED.locale,
	url           = EXCLUDED.url,
	published_at  = EXCLUDED.published_at,
	updated_at    = EXCLUDED.updated_at`,
		res.ID, res.TenantID, string(res.Source), res.SourceSite, res.SourceID, string(res.Type),
		res.Slug, res.Title, res.BodyHTML, res.BodyText, textArray(res.Images), res.Price, res.Currency, textArray(res.Tags),
		jsonMap(res.Attributes), jsonMap(res.SEO), res.Locale, res.URL, res.PublishedAt, res.UpdatedAt)
	return err
}

// textArray never hands pgx a nil slice, which would write SQL NULL
// into a NOT NULL array column.
func textArray(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func jsonMap(values map[string]string) map[string]string {
	if values == nil {
		return map[string]string{}
	}
	return values
}

// GetResource retrieves a single resource by ID.
func (r *repository) GetResource(ctx context.Context, tenantID, id uuid.UUID) (*core.Resource, error) {
	var res *core.Resource
	err := r.backend.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM hub_resources
WHERE tenant_id = $1 AND id = $2`, resourceColumns), tenantID, id)

		var scanErr error
		res, scanErr = scanResource(row)
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return fmt.Errorf("%w: resource %s", storage.ErrNotFound, id)
		}
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetResources retrieves multiple resources by ID. Missing IDs are
// skipped without error.
func (r *repository) GetResources(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*core.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var results []*core.Resource
	err := r.backend.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, fmt.Sprintf(`SELECT %s FROM hub_resources
WHERE tenant_id = $1 AND id = ANY($2)`, resourceColumns), tenantID, ids)
		if err != nil {
			return err
		}
		defer rows.Close()

		results, err = collectResources(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SearchResources matches query text case-insensitively against title,
// slug, body text and tags, most recently updated first.
func (r *repository) SearchResources(ctx context.Context, tenantID uuid.UUID, query storage.SearchQuery) ([]*core.Resource, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var results []*core.Resource
	err := r.backend.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, fmt.Sprintf(`SELECT %s FROM hub_resources
WHERE tenant_id = $1
  AND ($2 = '' OR resource_type = $2)
  AND ($3 = ''
       OR title ILIKE '%%' || $3 || '%%'
       OR slug ILIKE '%%' || $3 || '%%'
       OR body_text ILIKE '%%' || $3 || '%%'
       OR array_to_string(tags, ',') ILIKE '%%' || $3 || '%%')
ORDER BY updated_at DESC
LIMIT $4`, resourceColumns), tenantID, string(query.Type), query.Text, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		results, err = collectResources(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateEmbeddings stores or clears embedding vectors. Unknown IDs are
// skipped without error.
func (r *repository) UpdateEmbeddings(ctx context.Context, tenantID uuid.UUID, embeddings map[uuid.UUID][]float32) error {
	if len(embeddings) == 0 {
		return nil
	}
	return r.backend.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		for id, vector := range embeddings {
			if _, err := tx.Exec(ctx, `UPDATE hub_resources SET embedding = $3
WHERE tenant_id = $1 AND id = $2`, tenantID, id, vector); err != nil {
				return fmt.Errorf("update embedding %s: %w", id, err)
			}
		}
		return nil
	})
}

func scanResource(row pgx.Row) (*core.Resource, error) {
	var res core.Resource
	var source, resourceType string
	err := row.Scan(&res.ID, &res.TenantID, &source, &res.SourceSite, &res.SourceID, &resourceType,
		&res.Slug, &res.Title, &res.BodyHTML, &res.BodyText, &res.Images, &res.Price, &res.Currency, &res.Tags,
		&res.Attributes, &res.SEO, &res.Locale, &res.URL, &res.PublishedAt, &res.UpdatedAt, &res.Embedding)
	if err != nil {
		return nil, err
	}
	res.Source = core.SourceType(source)
	res.Type = core.ResourceType(resourceType)
	return &res, nil
}

func collectResources(rows pgx.Rows) ([]*core.Resource, error) {
	var results []*core.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
