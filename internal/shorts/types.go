// Package shorts implements the ranked-retrieval pipeline: search-result
// filtering, sentiment scoring, popularity ranking and persistence of
// YouTube Shorts candidates for a product.
package shorts

// SearchMode selects which kind of search result the pipeline accepts.
type SearchMode string

// Search modes supported by the pipeline.
const (
	ModeShortForm SearchMode = "shorts"
	ModeStandard  SearchMode = "videos"
)

// Candidate is a search result that passed video-id extraction and
// mode-specific filtering, enriched with sentiment and popularity.
// JSON field names match the downstream contract.
type Candidate struct {
	ProductCode    int    `json:"product_code"`
	Title          string `json:"title"`
	VideoID        string `json:"shorts_id"`
	URL            string `json:"shorts_url"`
	ThumbnailURL   string `json:"thumbnail_url"`
	SentimentScore int    `json:"sentiment"`
	Popularity     int64  `json:"likeCount"`
}
