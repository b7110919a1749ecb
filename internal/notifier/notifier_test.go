package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dotblossom/shorts-radar/internal/shorts"
)

func TestNotifyTopShortPostsEnvelope(t *testing.T) {
	t.Parallel()

	var gotPath, gotContentType string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`ok`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())
	cand := shorts.Candidate{
		VideoID:      "XYZ789",
		URL:          "https://www.youtube.com/shorts/XYZ789",
		ThumbnailURL: "https://i.ytimg.com/vi/XYZ789/hqdefault.jpg",
	}
	require.NoError(t, c.NotifyTopShort(context.Background(), 42, cand))

	require.Equal(t, "/ai-api/metadata/product/shorts/42", gotPath)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, float64(42), gotBody["product_id"])

	inner, ok := gotBody["shorts"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "https://www.youtube.com/shorts/XYZ789", inner["youtube_url"])
	require.Equal(t, "https://i.ytimg.com/vi/XYZ789/hqdefault.jpg", inner["youtube_thumbnail_url"])
	require.Equal(t, "XYZ789", inner["shorts_id"])
}

func TestNotifyTopShortErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL}, zap.NewNop())
	err := c.NotifyTopShort(context.Background(), 42, shorts.Candidate{VideoID: "x"})
	require.Error(t, err)
}

func TestNotifyTopShortConnectionError(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
	err := c.NotifyTopShort(context.Background(), 42, shorts.Candidate{VideoID: "x"})
	require.Error(t, err)
}
