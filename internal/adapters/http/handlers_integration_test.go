//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aitorzubi/obratrace/internal/adapters/http"
	"github.com/aitorzubi/obratrace/internal/adapters/postgres"
	"github.com/aitorzubi/obratrace/internal/core/domain"
	"github.com/aitorzubi/obratrace/internal/core/usecases"
	"github.com/aitorzubi/obratrace/internal/pkg/config"
)

// setupTestDB connects to the test database and returns a clean DB instance.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("obratrace-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	dsn := cfg.Database.DSN()
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	db := &postgres.DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return db
}

// setupTestDeps creates dependencies with a real DB and repo, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	siteRepo := postgres.NewSiteRepo(db)

	return &http.Dependencies{
		Sites:           usecases.NewSiteService(siteRepo, nil, nil),
		Progress:        usecases.NewProgressService(siteRepo, nil, nil),
		DB:              db,
		SnapThresholdPx: 12,
	}
}

// TestSiteLifecycle_Integration traces the full flow against a real database:
// create, save a traced snapshot, record progress, review it, read the summary.
func TestSiteLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	// Create
	name := "integ " + time.Now().Format("20060102150405")
	req := httptest.NewRequest("POST", "/v1/sites", strings.NewReader(`{"name":"`+name+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var site domain.Site
	if err := json.NewDecoder(resp.Body).Decode(&site); err != nil {
		t.Fatalf("decode site: %v", err)
	}
	defer func() {
		del := httptest.NewRequest("DELETE", "/v1/sites/"+site.ID, nil)
		app.Test(del, -1)
	}()

	// Save a traced square
	site.Points = []domain.GeoPoint{
		{Lat: 43.2627, Lng: -2.9253},
		{Lat: 43.2627, Lng: -2.9244},
		{Lat: 43.2634, Lng: -2.9244},
		{Lat: 43.2634, Lng: -2.9253},
	}
	site.IsClosed = true
	site.ContractorCommitmentPerDay = 50
	body, _ := json.Marshal(site)
	req = httptest.NewRequest("PUT", "/v1/sites/"+site.ID, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("save: expected 200, got %d", resp.StatusCode)
	}
	var saved domain.Site
	json.NewDecoder(resp.Body).Decode(&saved)
	if saved.Metrics.PerimeterMeters <= 0 {
		t.Fatalf("expected computed perimeter, got %v", saved.Metrics.PerimeterMeters)
	}

	// Record progress
	req = httptest.NewRequest("POST", "/v1/sites/"+site.ID+"/progress",
		strings.NewReader(`{"metersCompleted":25,"notes":"first stretch"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("progress: expected 201, got %d", resp.StatusCode)
	}
	var entry domain.ProgressEntry
	json.NewDecoder(resp.Body).Decode(&entry)

	// Approve it
	req = httptest.NewRequest("POST", "/v1/sites/"+site.ID+"/progress/"+entry.ID+"/review",
		strings.NewReader(`{"status":"approved"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("review: expected 200, got %d", resp.StatusCode)
	}

	// Summary reflects the approved meters
	req = httptest.NewRequest("GET", "/v1/sites/"+site.ID+"/summary", nil)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("summary: expected 200, got %d", resp.StatusCode)
	}
	var summary domain.ProgressSummary
	json.NewDecoder(resp.Body).Decode(&summary)
	if summary.TotalCompletedMeters != 25 {
		t.Errorf("expected 25 approved meters, got %v", summary.TotalCompletedMeters)
	}
}

// TestListSitesNearby_Integration tests the bounding-box query against a real database.
func TestListSitesNearby_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	deps := setupTestDeps(t, db)
	app := setupApp(deps)

	// Seed a site with a vertex in central Bilbao
	site := domain.NewSite("nearby " + time.Now().Format("20060102150405"))
	site.Points = []domain.GeoPoint{{Lat: 43.263, Lng: -2.935}}
	if err := postgres.NewSiteRepo(db).Save(context.Background(), site); err != nil {
		t.Fatalf("seed site: %v", err)
	}
	defer func() {
		del := httptest.NewRequest("DELETE", "/v1/sites/"+site.ID, nil)
		app.Test(del, -1)
	}()

	req := httptest.NewRequest("GET", "/v1/sites?lat=43.263&lng=-2.935&radius=5000", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data []domain.Site `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Data) == 0 {
		t.Error("expected at least 1 nearby site, got 0")
	}
}
