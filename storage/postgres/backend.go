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


// Package postgres implements the storage repositories on PostgreSQL.
//
// Tenant isolation is enforced twice: every statement runs inside a
// transaction that sets app.tenant_id via set_config, and the tables
// carry row level security policies keyed on that setting. A query that
// forgets a tenant predicate still cannot cross tenants.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hubforge/contenthub/storage"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS hub_resources (
	id            UUID PRIMARY KEY,
	tenant_id     UUID NOT NULL,
	source        TEXT NOT NULL,
	source_site   TEXT NOT NULL DEFAULT '',
	source_id     TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	slug          TEXT NOT NULL DEFAULT '',
	title         TEXT NOT NULL DEFAULT '',
	body_html     TEXT NOT NULL DEFAULT '',
	body_text     TEXT NOT NULL DEFAULT '',
	images        TEXT[] NOT NULL DEFAULT '{}',
	price         DOUBLE PRECISION,
	currency      TEXT NOT NULL DEFAULT '',
	tags          TEXT[] NOT NULL DEFAULT '{}',
	attributes    JSONB NOT NULL DEFAULT '{}',
	seo           JSONB NOT NULL DEFAULT '{}',
	locale        TEXT NOT NULL DEFAULT '',
	url           TEXT NOT NULL DEFAULT '',
	published_at  TIMESTAMPTZ,
	updated_at    TIMESTAMPTZ NOT NULL,
	embedding     REAL[],
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT uq_resource_origin UNIQUE (tenant_id, source, source_site, source_id)
);

CREATE INDEX IF NOT EXISTS idx_hub_resources_tenant_updated
	ON hub_resources (tenant_id, updated_at DESC);

ALTER TABLE hub_resources ENABLE ROW LEVEL SECURITY;
ALTER TABLE hub_resources FORCE ROW LEVEL SECURITY;
DROP POLICY IF EXISTS hub_resources_tenant_isolation ON hub_resources;
CREATE POLICY hub_resources_tenant_isolation ON hub_resources
	USING (tenant_id = current_setting('app.tenant_id', true)::uuid);

CREATE TABLE IF NOT EXISTS site_integrations (
	tenant_id                     UUID NOT NULL,
	site_id                       TEXT NOT NULL,
	ga_measurement_id             TEXT NOT NULL DEFAULT '',
	gtm_container_id              TEXT NOT NULL DEFAULT '',
	conversion_event              TEXT NOT NULL DEFAULT '',
	consent_cookie_name           TEXT NOT NULL DEFAULT '',
	consent_opt_out_value         TEXT NOT NULL DEFAULT '',
	session_replay_enabled        BOOLEAN NOT NULL DEFAULT FALSE,
	session_replay_project_key    TEXT NOT NULL DEFAULT '',
	session_replay_host           TEXT NOT NULL DEFAULT '',
	session_replay_mask_selectors TEXT[] NOT NULL DEFAULT '{}',
	feedback_enabled              BOOLEAN NOT NULL DEFAULT FALSE,
	feedback_widget_url           TEXT NOT NULL DEFAULT '',
	feedback_project_key          TEXT NOT NULL DEFAULT '',
	created_at                    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at                    TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (tenant_id, site_id)
);

ALTER TABLE site_integrations ENABLE ROW LEVEL SECURITY;
ALTER TABLE site_integrations FORCE ROW LEVEL SECURITY;
DROP POLICY IF EXISTS site_integrations_tenant_isolation ON site_integrations;
CREATE POLICY site_integrations_tenant_isolation ON site_integrations
	USING (tenant_id = current_setting('app.tenant_id', true)::uuid);
`

// Backend wraps a pgx connection pool shared by the repositories.
type Backend struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	closed atomic.Bool
}

// Option configures a Backend.
type Option func(*Backend) error

// WithLogger overrides the backend logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) error {
		if logger != nil {
			b.logger = logger
		}
		return nil
	}
}

// OpenBackend connects to PostgreSQL and ensures the schema exists.
func OpenBackend(ctx context.Context, dsn string, opts ...Option) (*Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	b := &Backend{
		pool:   pool,
		logger: slog.Default().With("component", "postgres"),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			pool.Close()
			return nil, err
		}
	}

	if err := b.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) ensureSchema(ctx context.Context) error {
	if _, err := b.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	b.logger.Debug("schema ensured")
	return nil
}

// withTenantTx runs fn inside a transaction with app.tenant_id set,
// so the row level security policies scope every statement.
func (b *Backend) withTenantTx(ctx context.Context, tenantID uuid.UUID, fn func(tx pgx.Tx) error) error {
	if b.closed.Load() {
		return storage.ErrStorageClosed
	}
	if tenantID == uuid.Nil {
		return storage.ErrTenantRequired
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT set_config('app.tenant_id', $1, true)`, tenantID.String()); err != nil {
		return fmt.Errorf("set tenant: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}
	return nil
}

// Close closes the connection pool. Safe to call more than once.
func (b *Backend) Close() error {
	if b.closed.CompareAndSwap(false, true) {
		b.pool.Close()
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation, optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
