package audit

import (
	"context"
	"testing"
	"time"

	"github.com/nerrad567/ths-gateway/internal/infrastructure/database"
	_ "github.com/nerrad567/ths-gateway/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestCreate_GeneratesIDAndTime(t *testing.T) {
	repo := newTestRepo(t)

	entry := &Entry{Action: ActionCancel, Account: "main", OrderID: "A123", Success: true}
	if err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if entry.ID == "" {
		t.Error("ID not generated")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestCreateAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	entries := []*Entry{
		{
			Action: ActionOrder, Account: "main", Side: "buy", ShareholderCode: "A000001",
			Instrument: "600000", Price: "10.5", Quantity: 100, Success: true,
			RequestID: "req-1", CreatedAt: base,
		},
		{
			Action: ActionOrder, Account: "main", Side: "sell", ShareholderCode: "A000001",
			Instrument: "600000", Price: "11", Quantity: 0, Success: false,
			Message: "资金不足", CreatedAt: base.Add(time.Second),
		},
		{
			Action: ActionCancel, Account: "backup", OrderID: "A123", Success: true,
			CreatedAt: base.Add(1500 * time.Millisecond),
		},
	}
	for _, e := range entries {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	result, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 3 || len(result.Entries) != 3 {
		t.Fatalf("List() total=%d len=%d, want 3", result.Total, len(result.Entries))
	}
	if result.Limit != defaultLimit {
		t.Errorf("Limit = %d, want %d", result.Limit, defaultLimit)
	}

	// Most recent first.
	if result.Entries[0].Action != ActionCancel || result.Entries[2].Side != "buy" {
		t.Errorf("unexpected order: %+v", result.Entries)
	}

	sell := result.Entries[1]
	if sell.Message != "资金不足" || sell.Success || sell.Quantity != 0 {
		t.Errorf("sell entry = %+v", sell)
	}
	if !sell.CreatedAt.Equal(base.Add(time.Second)) {
		t.Errorf("CreatedAt = %v, want %v", sell.CreatedAt, base.Add(time.Second))
	}

	buy := result.Entries[2]
	if buy.Price != "10.5" || buy.Quantity != 100 || buy.RequestID != "req-1" || buy.ShareholderCode != "A000001" {
		t.Errorf("buy entry = %+v", buy)
	}
}

func TestList_Filters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []*Entry{
		{Action: ActionOrder, Account: "main", Success: true},
		{Action: ActionOrder, Account: "main", Success: false},
		{Action: ActionCancel, Account: "main", Success: false},
		{Action: ActionOrder, Account: "backup", Success: true},
	}
	for _, e := range seed {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"orders", Filter{Action: ActionOrder}, 3},
		{"account", Filter{Account: "backup"}, 1},
		{"failed", Filter{Failed: true}, 2},
		{"failed orders for main", Filter{Action: ActionOrder, Account: "main", Failed: true}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if result.Total != tt.want {
				t.Errorf("Total = %d, want %d", result.Total, tt.want)
			}
		})
	}
}

func TestList_Pagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Create(ctx, &Entry{Action: ActionOrder, Account: "main", Success: true}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	result, err := repo.List(ctx, Filter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Total != 5 || len(result.Entries) != 1 {
		t.Errorf("total=%d len=%d, want 5 and 1", result.Total, len(result.Entries))
	}

	result, err = repo.List(ctx, Filter{Limit: 1000, Offset: -3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Limit != maxLimit || result.Offset != 0 {
		t.Errorf("limit=%d offset=%d, want clamped to %d and 0", result.Limit, result.Offset, maxLimit)
	}
}

func TestList_Empty(t *testing.T) {
	repo := newTestRepo(t)

	result, err := repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if result.Entries == nil {
		t.Error("Entries should be an empty slice, not nil")
	}
}
