package shorts

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// PageFetcher hands out browser-backed search sessions. One session is
// acquired per pipeline run and closed when the run ends.
type PageFetcher interface {
	NewSession(ctx context.Context) (SearchSession, error)
}

// SearchSession performs rendered searches against the video platform and
// returns the raw result nodes. Close must tolerate repeated calls.
type SearchSession interface {
	Search(ctx context.Context, query string) ([]*goquery.Selection, error)
	Close()
}

// MetadataProvider returns the popularity metric for a video id.
type MetadataProvider interface {
	Popularity(ctx context.Context, videoID string) (int64, error)
}

// RecordStore upserts ranked candidates keyed by (product_code, shorts_id).
type RecordStore interface {
	UpsertShort(ctx context.Context, c Candidate) error
}

// Notifier forwards the best candidate to the downstream metadata service.
type Notifier interface {
	NotifyTopShort(ctx context.Context, productCode int, c Candidate) error
}
