package shorts

import (
	"fmt"
	"net/url"
	"strings"
)

const thumbnailBase = "https://i.ytimg.com/vi"

// ExtractVideoID pulls the YouTube video id out of a result URL. It returns
// an empty string for non-YouTube hosts, unrecognized path shapes and
// malformed URLs; it never fails.
func ExtractVideoID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	if host != "youtube.com" && !strings.HasSuffix(host, ".youtube.com") {
		return ""
	}
	switch {
	case strings.HasPrefix(parsed.Path, "/watch"):
		return parsed.Query().Get("v")
	case strings.HasPrefix(parsed.Path, "/shorts"):
		segments := strings.Split(parsed.Path, "/")
		return segments[len(segments)-1]
	default:
		return ""
	}
}

// ThumbnailURL derives the CDN thumbnail location for a video id. No
// network call is involved.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("%s/%s/hqdefault.jpg", thumbnailBase, videoID)
}
