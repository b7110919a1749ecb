package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dotblossom/shorts-radar/internal/shorts"
)

func newTestStore(t *testing.T) (*ShortsStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := NewShortsStoreWithPool(mock, StoreConfig{
		Table:          "shorts",
		InitRetries:    3,
		InitRetryDelay: time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	return store, mock
}

func TestUpsertShortExecutesUpsert(t *testing.T) {
	t.Parallel()

	store, mock := newTestStore(t)

	cand := shorts.Candidate{
		ProductCode:    42,
		VideoID:        "XYZ789",
		URL:            "https://www.youtube.com/shorts/XYZ789",
		ThumbnailURL:   "https://i.ytimg.com/vi/XYZ789/hqdefault.jpg",
		SentimentScore: 2,
	}

	mock.ExpectExec("INSERT INTO shorts").
		WithArgs(
			cand.ProductCode,
			cand.VideoID,
			cand.URL,
			cand.ThumbnailURL,
			cand.SentimentScore,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.UpsertShort(context.Background(), cand))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertShortRequiresVideoID(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	err := store.UpsertShort(context.Background(), shorts.Candidate{ProductCode: 42})
	require.Error(t, err)
}

func TestUpsertShortPropagatesExecError(t *testing.T) {
	t.Parallel()

	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO shorts").
		WithArgs(42, "XYZ789", "u", "t", 0).
		WillReturnError(errors.New("connection reset"))

	err := store.UpsertShort(context.Background(), shorts.Candidate{
		ProductCode: 42, VideoID: "XYZ789", URL: "u", ThumbnailURL: "t",
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchemaRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	store, mock := newTestStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS shorts").
		WillReturnError(errors.New("database starting up"))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS shorts").
		WillReturnError(errors.New("database starting up"))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS shorts").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.InitSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSchemaGivesUpAfterBoundedRetries(t *testing.T) {
	t.Parallel()

	store, mock := newTestStore(t)

	for i := 0; i < 3; i++ {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS shorts").
			WillReturnError(errors.New("database starting up"))
	}

	err := store.InitSchema(context.Background())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewShortsStoreWithPoolValidation(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewShortsStoreWithPool(nil, StoreConfig{}, zap.NewNop())
	require.Error(t, err)

	_, err = NewShortsStoreWithPool(mock, StoreConfig{Table: "bad-table;drop"}, zap.NewNop())
	require.Error(t, err)

	store, err := NewShortsStoreWithPool(mock, StoreConfig{}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "shorts", store.table)
}
