package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/clock"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/persistence"
)

func newPostgresStore(t *testing.T) (*PostgresTicketStore, *clock.FakeClock) {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := persistence.RunMigrations(ctx, pool, "../../migrations", zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE tickets RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if _, err := pool.Exec(ctx, `ALTER SEQUENCE ticket_id_counter RESTART`); err != nil {
		t.Fatalf("reset id counter: %v", err)
	}
	fake := clock.Fake(testStart)
	return NewPostgresTicketStore(pool, fake), fake
}

func TestPostgresTicketStoreLifecycle(t *testing.T) {
	store, fake := newPostgresStore(t)
	ctx := context.Background()

	creator := domain.UserRef{ID: "u1", Name: "Demo", Email: "demo@example.com"}
	if err := store.Seed(ctx, domain.Ticket{ID: "welcome-ticket-001", Title: "seed", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityMedium, CreatedBy: creator}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Seeding twice is a no-op.
	if err := store.Seed(ctx, domain.Ticket{ID: "welcome-ticket-001", Title: "again", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityMedium, CreatedBy: creator}); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	fake.Advance(time.Second)
	created, err := store.Insert(ctx, domain.Ticket{Title: "new", Description: "d", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh, CreatedBy: creator})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Seed rows do not consume ids, matching the in-memory store.
	if want := fmt.Sprintf("ticket-1-%d", testStart.Add(time.Second).UnixMilli()); created.ID != want {
		t.Fatalf("id = %s, want %s", created.ID, want)
	}

	found, err := store.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.CreatedBy != creator || found.AssignedTo != nil || !found.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("round trip mismatch: %+v", found)
	}

	fake.Advance(time.Minute)
	status := domain.TicketStatusResolved
	updated, err := store.Update(ctx, created.ID, domain.TicketPatch{
		Status:     &status,
		AssignedTo: domain.AssigneeChange{Set: true, Value: &domain.UserRef{ID: "u2", Name: "Agent"}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != status || updated.AssignedTo == nil || !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := store.Update(ctx, "does-not-exist", domain.TicketPatch{Status: &status}); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}

	all, err := store.List(ctx, nil)
	if err != nil || len(all) != 2 || all[0].ID != "welcome-ticket-001" || all[0].Title != "seed" {
		t.Fatalf("unexpected list %+v (err %v)", all, err)
	}
	if all[1].ID != created.ID || all[1].Status != domain.TicketStatusResolved {
		t.Fatalf("updated ticket not listed: %+v", all[1])
	}
}
