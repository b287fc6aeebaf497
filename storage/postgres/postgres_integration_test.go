package postgres

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubforge/contenthub/core"
	"github.com/hubforge/contenthub/storage"
)

func integrationDSN(t *testing.T) string {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("CONTENTHUB_TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("set CONTENTHUB_TEST_POSTGRES_DSN to run Postgres integration tests")
	}
	return dsn
}

func newTestRepository(t *testing.T) storage.Repository {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := NewRepository(ctx, integrationDSN(t))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testResource(tenantID uuid.UUID, sourceID string) *core.Resource {
	return &core.Resource{
		TenantID:   tenantID,
		Source:     core.SourceShopify,
		SourceSite: "example.myshopify.com",
		SourceID:   sourceID,
		Type:       core.ResourceTypeProduct,
		Slug:       "widget-" + sourceID,
		Title:      "Widget " + sourceID,
		BodyHTML:   "<p>A widget</p>",
		BodyText:   "A widget",
		Tags:       []string{"widgets"},
		Attributes: map[string]string{"specs.color": "red"},
		UpdatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestUpsertResources_MintsAndKeepsIDs(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	tenant := uuid.New()

	first, err := repo.UpsertResources(ctx, tenant, []*core.Resource{testResource(tenant, "p1")})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.NotEqual(t, uuid.Nil, first[0].ID)

	// Same identity key again: the stored ID must survive.
	updated := testResource(tenant, "p1")
	updated.Title = "Widget p1 v2"
	second, err := repo.UpsertResources(ctx, tenant, []*core.Resource{updated})
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)

	got, err := repo.GetResource(ctx, tenant, first[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget p1 v2", got.Title)
}

func TestUpsertResources_Idempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	tenant := uuid.New()

	batch := []*core.Resource{testResource(tenant, "p1"), testResource(tenant, "p2")}
	_, err := repo.UpsertResources(ctx, tenant, batch)
	require.NoError(t, err)
	_, err = repo.UpsertResources(ctx, tenant, batch)
	require.NoError(t, err)

	results, err := repo.SearchResources(ctx, tenant, storage.SearchQuery{Text: "widget"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestUpsertResources_InBatchDuplicatesLastWins(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	tenant := uuid.New()

	a := testResource(tenant, "dup")
	a.Title = "first payload"
	b := testResource(tenant, "dup")
	b.Title = "last payload"

	saved, err := repo.UpsertResources(ctx, tenant, []*core.Resource{a, b})
	require.NoError(t, err)
	assert.Equal(t, saved[0].ID, saved[1].ID)

	got, err := repo.GetResource(ctx, tenant, saved[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "last payload", got.Title)
}

func TestUpsertResources_ConcurrentSameIdentityConverges(t *testing.T) {
	// Two connections racing on a brand-new identity key: the loser of
	// the unique-violation race must adopt the winner's surrogate ID.
	repoA := newTestRepository(t)
	repoB := newTestRepository(t)
	ctx := context.Background()
	tenant := uuid.New()

	const rounds = 10
	repos := []storage.Repository{repoA, repoB}
	ids := make([][]uuid.UUID, len(repos))

	var wg sync.WaitGroup
	errs := make([]error, len(repos))
	start := make(chan struct{})
	for i, repo := range repos {
		wg.Add(1)
		go func(i int, repo storage.Repository) {
			defer wg.Done()
			<-start
			for round := 0; round < rounds; round++ {
				sourceID := "race-" + strconv.Itoa(round)
				saved, err := repo.UpsertResources(ctx, tenant, []*core.Resource{testResource(tenant, sourceID)})
				if err != nil {
					errs[i] = err
					return
				}
				ids[i] = append(ids[i], saved[0].ID)
			}
		}(i, repo)
	}
	close(start)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Len(t, ids[0], rounds)
	require.Len(t, ids[1], rounds)

	// Both writers converged on one ID per identity key, one row each.
	for round := 0; round < rounds; round++ {
		assert.Equal(t, ids[0][round], ids[1][round], "round %d minted two surrogate IDs", round)
	}

	results, err := repoA.SearchResources(ctx, tenant, storage.SearchQuery{Text: "widget"})
	require.NoError(t, err)
	assert.Len(t, results, rounds)
}

func TestUpsertResources_RejectsInvalid(t *testing.T) {
	repo := newTestRepository(t)
	tenant := uuid.New()

	res := testResource(tenant, "p1")
	res.SourceID = ""
	_, err := repo.UpsertResources(context.Background(), tenant, []*core.Resource{res})
	assert.ErrorIs(t, err, core.ErrEmptySourceID)
}

func TestUpsertResources_TenantRequired(t *testing.T) {
	repo := newTestRepository(t)

	res := testResource(uuid.Nil, "p1")
	_, err := repo.UpsertResources(context.Background(), uuid.Nil, []*core.Resource{res})
	assert.Error(t, err)
}

func TestGetResource_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetResource(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetResources_SkipsMissing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	tenant := uuid.New()

	saved, err := repo.UpsertResources(ctx, tenant, []*core.Resource{testResource(tenant, "p1")})
	require.NoError(t, err)

	got, err := repo.GetResources(ctx, tenant, []uuid.UUID{saved[0].ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTenantIsolation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	tenantA := uuid.New()
	tenantB := uuid.New()

	saved, err := repo.UpsertResources(ctx, tenantA, []*core.Resource{testResource(tenantA, "p1")})
	require.NoError(t, err)

	// Same identity key under another tenant is a distinct resource.
	other, err := repo.UpsertResources(ctx, tenantB, []*core.Resource{testResource(tenantB, "p1")})
	require.NoError(t, err)
	assert.NotEqual(t, saved[0].ID, other[0].ID)

	// Tenant B cannot read tenant A's resource.
	_, err = repo.GetResource(ctx, tenantB, saved[0].ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	results, err := repo.SearchResources(ctx, tenantB, storage.SearchQuery{Text: "widget"})
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, tenantB, res.TenantID)
	}
}

func TestSearchResources_FiltersAndOrders(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	tenant := uuid.New()

	older := testResource(tenant, "p1")
	older.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	newer := testResource(tenant, "p2")
	page := testResource(tenant, "p3")
	page.Type = core.ResourceTypePage
	page.Title = "About us"

	_, err := repo.UpsertResources(ctx, tenant, []*core.Resource{older, newer, page})
	require.NoError(t, err)

	results, err := repo.SearchResources(ctx, tenant, storage.SearchQuery{Text: "widget", Type: core.ResourceTypeProduct})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "p2", results[0].SourceID)
	assert.Equal(t, "p1", results[1].SourceID)

	// Tag match.
	results, err = repo.SearchResources(ctx, tenant, storage.SearchQuery{Text: "widgets"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestUpdateEmbeddings_SetAndClear(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	tenant := uuid.New()

	saved, err := repo.UpsertResources(ctx, tenant, []*core.Resource{testResource(tenant, "p1")})
	require.NoError(t, err)
	id := saved[0].ID

	vector := []float32{0.1, 0.2, 0.3}
	require.NoError(t, repo.UpdateEmbeddings(ctx, tenant, map[uuid.UUID][]float32{id: vector}))

	got, err := repo.GetResource(ctx, tenant, id)
	require.NoError(t, err)
	assert.Equal(t, vector, got.Embedding)

	// Content upserts must not disturb the stored embedding.
	_, err = repo.UpsertResources(ctx, tenant, []*core.Resource{testResource(tenant, "p1")})
	require.NoError(t, err)
	got, err = repo.GetResource(ctx, tenant, id)
	require.NoError(t, err)
	assert.Equal(t, vector, got.Embedding)

	// A nil vector clears it.
	require.NoError(t, repo.UpdateEmbeddings(ctx, tenant, map[uuid.UUID][]float32{id: nil}))
	got, err = repo.GetResource(ctx, tenant, id)
	require.NoError(t, err)
	assert.Nil(t, got.Embedding)
}

func TestSiteIntegrations_Lifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	tenant := uuid.New()

	site := &core.SiteIntegration{
		SiteID:          "shop-1",
		GAMeasurementID: "G-ABC123",
		FeedbackEnabled: true,
	}
	saved, err := repo.SaveSiteIntegration(ctx, tenant, site, nil)
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())

	gtm := "GTM-XYZ"
	patched, err := repo.SaveSiteIntegration(ctx, tenant, &core.SiteIntegration{SiteID: "shop-1"}, &core.SiteIntegrationPatch{
		GTMContainerID: &gtm,
	})
	require.NoError(t, err)
	assert.Equal(t, "GTM-XYZ", patched.GTMContainerID)
	// Untouched fields survive the patch.
	assert.Equal(t, "G-ABC123", patched.GAMeasurementID)
	assert.True(t, patched.FeedbackEnabled)

	got, err := repo.GetSiteIntegration(ctx, tenant, "shop-1")
	require.NoError(t, err)
	assert.Equal(t, "GTM-XYZ", got.GTMContainerID)

	list, err := repo.ListSiteIntegrations(ctx, tenant)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Another tenant sees nothing.
	_, err = repo.GetSiteIntegration(ctx, uuid.New(), "shop-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, repo.DeleteSiteIntegration(ctx, tenant, "shop-1"))
	err = repo.DeleteSiteIntegration(ctx, tenant, "shop-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
