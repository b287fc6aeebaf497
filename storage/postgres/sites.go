package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hubforge/contenthub/core"
	"github.com/hubforge/contenthub/storage"
)

const siteColumns = `site_id, ga_measurement_id, gtm_container_id, conversion_event,
consent_cookie_name, consent_opt_out_value, session_replay_enabled,
session_replay_project_key, session_replay_host, session_replay_mask_selectors,
feedback_enabled, feedback_widget_url, feedback_project_key, created_at, updated_at`

// SaveSiteIntegration inserts or patches an integration keyed by
// (tenant, site ID). The existing row is locked before the patch is
// applied, so concurrent saves serialize.
func (r *repository) SaveSiteIntegration(ctx context.Context, tenantID uuid.UUID, site *core.SiteIntegration, patch *core.SiteIntegrationPatch) (*core.SiteIntegration, error) {
	if site == nil || site.SiteID == "" {
		return nil, fmt.Errorf("%w: site id required", storage.ErrInvalidQuery)
	}

	var stored *core.SiteIntegration
	err := r.backend.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM site_integrations
WHERE tenant_id = $1 AND site_id = $2 FOR UPDATE`, siteColumns), tenantID, site.SiteID)

		existing, err := scanSiteIntegration(row)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			stored = cloneSiteIntegration(site)
			if patch != nil {
				patch.Apply(stored)
			}
			now := time.Now().UTC()
			stored.CreatedAt = now
			stored.UpdatedAt = now
			return insertSiteIntegration(ctx, tx, tenantID, stored)
		case err != nil:
			return err
		}

		stored = existing
		if patch != nil {
			patch.Apply(stored)
		}
		stored.UpdatedAt = time.Now().UTC()
		return updateSiteIntegration(ctx, tx, tenantID, stored)
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// GetSiteIntegration retrieves one integration by site ID.
func (r *repository) GetSiteIntegration(ctx context.Context, tenantID uuid.UUID, siteID string) (*core.SiteIntegration, error) {
	var stored *core.SiteIntegration
	err := r.backend.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM site_integrations
WHERE tenant_id = $1 AND site_id = $2`, siteColumns), tenantID, siteID)

		var scanErr error
		stored, scanErr = scanSiteIntegration(row)
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return fmt.Errorf("%w: site integration %s", storage.ErrNotFound, siteID)
		}
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ListSiteIntegrations lists the tenant's integrations ordered by site ID.
func (r *repository) ListSiteIntegrations(ctx context.Context, tenantID uuid.UUID) ([]*core.SiteIntegration, error) {
	var results []*core.SiteIntegration
	err := r.backend.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, fmt.Sprintf(`SELECT %s FROM site_integrations
WHERE tenant_id = $1 ORDER BY site_id`, siteColumns), tenantID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			site, err := scanSiteIntegration(rows)
			if err != nil {
				return err
			}
			results = append(results, site)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteSiteIntegration removes an integration by site ID.
func (r *repository) DeleteSiteIntegration(ctx context.Context, tenantID uuid.UUID, siteID string) error {
	return r.backend.withTenantTx(ctx, tenantID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM site_integrations
WHERE tenant_id = $1 AND site_id = $2`, tenantID, siteID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: site integration %s", storage.ErrNotFound, siteID)
		}
		return nil
	})
}

func insertSiteIntegration(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, si *core.SiteIntegration) error {
	_, err := tx.Exec(ctx, `INSERT INTO site_integrations (
	tenant_id, site_id, ga_measurement_id, gtm_container_id, conversion_event,
	consent_cookie_name, consent_opt_out_value, session_replay_enabled,
	session_replay_project_key, session_replay_host, session_replay_mask_selectors,
	feedback_enabled, feedback_widget_url, feedback_project_key, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		tenantID, si.SiteID, si.GAMeasurementID, si.GTMContainerID, si.ConversionEvent,
		si.ConsentCookieName, si.ConsentOptOutValue, si.SessionReplayEnabled,
		si.SessionReplayProjectKey, si.SessionReplayHost, textArray(si.SessionReplayMaskSelectors),
		si.FeedbackEnabled, si.FeedbackWidgetURL, si.FeedbackProjectKey, si.CreatedAt, si.UpdatedAt)
	return err
}

func updateSiteIntegration(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, si *core.SiteIntegration) error {
	_, err := tx.Exec(ctx, `UPDATE site_integrations SET
	ga_measurement_id = $3,
	gtm_container_id = $4,
	conversion_event = $5,
	consent_cookie_name = $6,
	consent_opt_out_value = $7,
	session_replay_enabled = $8,
	session_replay_project_key = $9,
	session_replay_host = $10,
	session_replay_mask_selectors = $11,
	feedback_enabled = $12,
	feedback_widget_url = $13,
	feedback_project_key = $14,
	updated_at = $15
WHERE tenant_id = $1 AND site_id = $2`,
		tenantID, si.SiteID, si.GAMeasurementID, si.GTMContainerID, si.ConversionEvent,
		si.ConsentCookieName, si.ConsentOptOutValue, si.SessionReplayEnabled,
		si.SessionReplayProjectKey, si.SessionReplayHost, textArray(si.SessionReplayMaskSelectors),
		si.FeedbackEnabled, si.FeedbackWidgetURL, si.FeedbackProjectKey, si.UpdatedAt)
	return err
}

func scanSiteIntegration(row pgx.Row) (*core.SiteIntegration, error) {
	var si core.SiteIntegration
	err := row.Scan(&si.SiteID, &si.GAMeasurementID, &si.GTMContainerID, &si.ConversionEvent,
		&si.ConsentCookieName, &si.ConsentOptOutValue, &si.SessionReplayEnabled,
		&si.SessionReplayProjectKey, &si.SessionReplayHost, &si.SessionReplayMaskSelectors,
		&si.FeedbackEnabled, &si.FeedbackWidgetURL, &si.FeedbackProjectKey, &si.CreatedAt, &si.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &si, nil
}

func cloneSiteIntegration(si *core.SiteIntegration) *core.SiteIntegration {
	clone := *si
	if si.SessionReplayMaskSelectors != nil {
		clone.SessionReplayMaskSelectors = append([]string(nil), si.SessionReplayMaskSelectors...)
	}
	return &clone
}
