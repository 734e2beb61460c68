package d2r_test

import (
	"context"
	"testing"

	"github.com/aulavision/aulavision-lms/internal/d2r"
	"github.com/aulavision/aulavision-lms/internal/db"
)

func TestRecompute(t *testing.T) {
	rows := []d2r.Row{
		{TR: 10, TA: 8, EO: 1, EC: 1},
		{TR: 12, TA: 9, EO: 0, EC: 3},
	}
	tr, ta, eo, ec, tot, con, vrb := d2r.Recompute(rows)
	if tr != 22 || ta != 17 || eo != 1 || ec != 4 {
		t.Fatalf("totals = tr%d ta%d eo%d ec%d", tr, ta, eo, ec)
	}
	if tot != 22 {
		t.Fatalf("tot = %d, want 22", tot)
	}
	if con != 13 {
		t.Fatalf("con = %v, want 13", con)
	}
	if vrb != 2 {
		t.Fatalf("var = %v, want 2", vrb)
	}
}

func TestRecomputeEmpty(t *testing.T) {
	tr, ta, eo, ec, tot, con, vrb := d2r.Recompute(nil)
	if tr+ta+eo+ec+tot != 0 || con != 0 || vrb != 0 {
		t.Fatal("empty rows must yield zero aggregates")
	}
}

func openTestStore(t *testing.T, name string) *d2r.Store {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return d2r.NewStore(dbh)
}

func TestCreateOverwritesClientAggregates(t *testing.T) {
	store := openTestStore(t, "d2r_create")
	ctx := context.Background()

	res, err := store.Create(ctx, d2r.Result{
		LearnerID: "u1",
		Rows: []d2r.Row{
			{TR: 10, TA: 8, EO: 1, EC: 1},
			{TR: 12, TA: 9, EO: 0, EC: 3},
		},
		// bogus client-side totals, all must be recomputed
		TRTotal: 999, Tot: 999, Con: -1, Var: 42,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.TRTotal != 22 || res.Tot != 22 || res.Con != 13 || res.Var != 2 {
		t.Fatalf("stored aggregates = %+v", res)
	}

	got, err := store.Get(ctx, "u1", res.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Con != 13 || len(got.Rows) != 2 {
		t.Fatalf("round trip = %+v", got)
	}
	if got.Rows[0].RowNumber != 1 || got.Rows[1].RowNumber != 2 {
		t.Fatalf("row numbers = %d, %d", got.Rows[0].RowNumber, got.Rows[1].RowNumber)
	}
}

func TestLatestContext(t *testing.T) {
	store := openTestStore(t, "d2r_latest")
	ctx := context.Background()

	if _, ok, err := store.Latest(ctx, "u1"); err != nil || ok {
		t.Fatalf("latest on empty store: ok=%v err=%v", ok, err)
	}

	if _, err := store.Create(ctx, d2r.Result{
		LearnerID: "u1",
		Rows:      []d2r.Row{{TR: 20, TA: 15, EO: 2, EC: 1}},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	c, ok, err := store.Latest(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("latest: ok=%v err=%v", ok, err)
	}
	if c.Con != 14 || c.Tot != 20 || c.Var != 0 {
		t.Fatalf("context = %+v", c)
	}
}

func TestGetOwnerScoped(t *testing.T) {
	store := openTestStore(t, "d2r_owner")
	ctx := context.Background()

	res, err := store.Create(ctx, d2r.Result{
		LearnerID: "u1",
		Rows:      []d2r.Row{{TR: 5, TA: 4, EO: 0, EC: 0}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Get(ctx, "intruder", res.ID); err != d2r.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
