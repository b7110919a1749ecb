package shorts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	platformBase = "https://www.youtube.com"
	shortsMarker = "/shorts/"

	titleSelector = "yt-formatted-string.style-scope.ytd-video-renderer"
	linkSelector  = "a#thumbnail"
)

// Filtering outcomes. ErrNoVideoID and ErrModeMismatch are ordinary
// rejections; anything else signals a malformed result node.
var (
	ErrMissingNodeFields = errors.New("result node missing title or link")
	ErrNoVideoID         = errors.New("no video id in result url")
	ErrModeMismatch      = errors.New("result url does not match search mode")
)

// CandidateFilter classifies one raw search-result node and extracts its
// fields. The mode decides whether short-form or standard results survive.
type CandidateFilter struct {
	mode SearchMode
}

// NewCandidateFilter builds a filter for the given search mode.
func NewCandidateFilter(mode SearchMode) *CandidateFilter {
	return &CandidateFilter{mode: mode}
}

// Apply extracts title and result URL from a ytd-video-renderer node,
// resolves the video id and applies the mode acceptance rule. The returned
// Candidate carries title, video id, URL and the templated thumbnail URL;
// sentiment and popularity are filled in by the pipeline.
func (f *CandidateFilter) Apply(node *goquery.Selection) (Candidate, error) {
	title := strings.TrimSpace(node.Find(titleSelector).First().Text())
	href, ok := node.Find(linkSelector).First().Attr("href")
	if title == "" || !ok || href == "" {
		return Candidate{}, ErrMissingNodeFields
	}
	resultURL := resolveResultURL(href)

	videoID := ExtractVideoID(resultURL)
	if videoID == "" {
		return Candidate{}, fmt.Errorf("%w: %s", ErrNoVideoID, resultURL)
	}
	if !f.accepts(resultURL) {
		return Candidate{}, fmt.Errorf("%w: %s", ErrModeMismatch, resultURL)
	}

	return Candidate{
		Title:        title,
		VideoID:      videoID,
		URL:          resultURL,
		ThumbnailURL: ThumbnailURL(videoID),
	}, nil
}

func (f *CandidateFilter) accepts(resultURL string) bool {
	isShort := strings.Contains(resultURL, shortsMarker)
	if f.mode == ModeShortForm {
		return isShort
	}
	return !isShort
}

// resolveResultURL makes relative hrefs absolute against the platform base.
func resolveResultURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return platformBase + href
	}
	return href
}
