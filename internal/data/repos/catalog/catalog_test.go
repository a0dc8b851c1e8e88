package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/autopilot-backend/internal/data/repos/testutil"
	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
)

func TestProductRepoArchiveOnlyActive(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)
	repo := NewProductRepo(db, testutil.Logger(t))

	p := testutil.SeedProduct(t, ctx, db, "Standing Desk")
	testutil.SeedProduct(t, ctx, db, "Desk Lamp")

	active, err := repo.ListByStatus(dbc, types.ProductStatusActive)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active: want=2 got=%d", len(active))
	}

	at := time.Now().UTC()
	ok, err := repo.Archive(dbc, p.ID, at)
	if err != nil || !ok {
		t.Fatalf("Archive: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Archive(dbc, p.ID, at)
	if err != nil {
		t.Fatalf("Archive again: %v", err)
	}
	if ok {
		t.Fatalf("archiving an archived product should be a no-op")
	}
	if ok, _ := repo.Archive(dbc, uuid.New(), at); ok {
		t.Fatalf("archiving a missing product should report false")
	}

	rows, err := repo.GetByIDs(dbc, []uuid.UUID{p.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows[0].Status != types.ProductStatusArchived || rows[0].ArchivedAt == nil {
		t.Fatalf("archived product: status=%s archived_at=%v", rows[0].Status, rows[0].ArchivedAt)
	}
}

func TestProductAnalyticsRepoListRecentNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Of(ctx)
	repo := NewProductAnalyticsRepo(db, testutil.Logger(t))

	p := testutil.SeedProduct(t, ctx, db, "Blender")
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		testutil.SeedAnalytics(t, ctx, db, p.ID, base.AddDate(0, 0, i), float64(i+1))
	}

	rows, err := repo.ListRecent(dbc, p.ID, 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len: want=3 got=%d", len(rows))
	}
	if rows[0].Revenue != 5 || rows[2].Revenue != 3 {
		t.Fatalf("order: got first=%v last=%v", rows[0].Revenue, rows[2].Revenue)
	}

	all, err := repo.ListRecent(dbc, p.ID, 0)
	if err != nil || len(all) != 5 {
		t.Fatalf("ListRecent all: err=%v len=%d", err, len(all))
	}
}

func TestProductVideoRepoCount(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewProductVideoRepo(db, testutil.Logger(t))

	p := testutil.SeedProduct(t, ctx, db, "Air Fryer")
	testutil.SeedVideos(t, ctx, db, p.ID, 4)

	n, err := repo.CountByProduct(dbctx.Of(ctx), p.ID)
	if err != nil {
		t.Fatalf("CountByProduct: %v", err)
	}
	if n != 4 {
		t.Fatalf("count: want=4 got=%d", n)
	}
}
