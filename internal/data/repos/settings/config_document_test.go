package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/autopilot-backend/internal/data/repos/testutil"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/autopilot-backend/internal/pkg/errors"
)

func TestConfigDocumentRepoVersioning(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Of(context.Background())
	repo := NewConfigDocumentRepo(db, testutil.Logger(t))

	missing, err := repo.GetByKey(dbc, "system_config")
	if err != nil || missing != nil {
		t.Fatalf("GetByKey missing: doc=%v err=%v", missing, err)
	}

	doc, err := repo.Create(dbc, "system_config", []byte(`{"existingField":"keep"}`))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.Version != 1 {
		t.Fatalf("version: want=1 got=%d", doc.Version)
	}

	if _, err := repo.Create(dbc, "system_config", []byte(`{}`)); !errors.Is(err, pkgerrors.ErrAlreadyExists) {
		t.Fatalf("duplicate Create: want ErrAlreadyExists got %v", err)
	}

	ok, err := repo.ReplaceIfVersion(dbc, "system_config", []byte(`{"v":2}`), 1)
	if err != nil || !ok {
		t.Fatalf("ReplaceIfVersion: ok=%v err=%v", ok, err)
	}
	ok, err = repo.ReplaceIfVersion(dbc, "system_config", []byte(`{"v":3}`), 1)
	if err != nil {
		t.Fatalf("stale ReplaceIfVersion: %v", err)
	}
	if ok {
		t.Fatalf("stale version must not replace")
	}

	got, err := repo.GetByKey(dbc, "system_config")
	if err != nil || got == nil {
		t.Fatalf("GetByKey: doc=%v err=%v", got, err)
	}
	if got.Version != 2 || string(got.Value) != `{"v":2}` {
		t.Fatalf("stored: version=%d value=%s", got.Version, string(got.Value))
	}

	keys, err := repo.ListKeys(dbc)
	if err != nil || len(keys) != 1 || keys[0] != "system_config" {
		t.Fatalf("ListKeys: keys=%v err=%v", keys, err)
	}
}
