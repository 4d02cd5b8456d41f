package outbox_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/event"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infrastructure/outbox"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload BLOB NOT NULL,
		published INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}

	return db
}

func TestOutbox_ShouldPersistEvent_BeforePublish(t *testing.T) {
	db := setupTestDB(t)
	repo := outbox.NewSQLiteRepository(db)

	evt := outbox.Event{
		ID:        "evt-1",
		Type:      event.PaymentAuthorized,
		Payload:   []byte(`{"payment_id":"pay-1"}`),
		CreatedAt: time.Now(),
	}

	err := repo.Save(evt)
	require.NoError(t, err)

	events, err := repo.FindUnpublished(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "evt-1", events[0].ID)
	require.Equal(t, event.PaymentAuthorized, events[0].Type)
	require.JSONEq(t, `{"payment_id":"pay-1"}`, string(events[0].Payload))
}

func TestOutbox_FindUnpublished_ShouldRespectLimitAndOrder(t *testing.T) {
	repo := outbox.NewSQLiteRepository(setupTestDB(t))
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	offsets := []struct {
		id     string
		offset time.Duration
	}{
		{"evt-3", 2 * time.Second},
		{"evt-1", 0},
		{"evt-2", time.Second},
	}

	for _, o := range offsets {
		require.NoError(t, repo.Save(outbox.Event{
			ID:        o.id,
			Type:      event.PaymentDeclined,
			Payload:   []byte(`{}`),
			CreatedAt: base.Add(o.offset),
		}))
	}

	events, err := repo.FindUnpublished(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "evt-1", events[0].ID)
	require.Equal(t, "evt-2", events[1].ID)

	require.NoError(t, repo.MarkPublished("evt-1"))

	events, err = repo.FindUnpublished(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "evt-2", events[0].ID)
}

func TestRecorder_ShouldStoreEncodedPayload(t *testing.T) {
	repo := outbox.NewSQLiteRepository(setupTestDB(t))
	recorder := &outbox.Recorder{
		Repo: repo,
		Now:  func() time.Time { return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC) },
	}

	err := recorder.Record(event.Event{
		Type: event.AuthorizerUnavailable,
		Payload: event.AuthorizerUnavailablePayload{
			PaymentID: "pay-9",
			Reason:    "timeout",
		},
	})
	require.NoError(t, err)

	events, err := repo.FindUnpublished(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotEmpty(t, events[0].ID)
	require.Equal(t, event.AuthorizerUnavailable, events[0].Type)
	require.JSONEq(t, `{"payment_id":"pay-9","reason":"timeout"}`, string(events[0].Payload))
}

func TestOutbox_MarkPublished_ShouldFail_OnUnknownID(t *testing.T) {
	repo := outbox.NewSQLiteRepository(setupTestDB(t))

	err := repo.MarkPublished("missing")
	require.ErrorIs(t, err, outbox.ErrUnknownEvent)
}

func TestOutbox_Pending_ShouldCountUnpublishedOnly(t *testing.T) {
	repo := outbox.NewSQLiteRepository(setupTestDB(t))

	for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
		require.NoError(t, repo.Save(outbox.Event{
			ID:        id,
			Type:      event.PaymentRejected,
			Payload:   []byte(`{}`),
			CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, repo.MarkPublished("evt-2"))

	n, err := repo.Pending()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
