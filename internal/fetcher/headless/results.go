package headless

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const resultNodeSelector = "ytd-video-renderer"

// ParseResultNodes extracts the search-result nodes from a rendered page
// snapshot. Ordering follows document order.
func ParseResultNodes(html string) ([]*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered page: %w", err)
	}
	var nodes []*goquery.Selection
	doc.Find(resultNodeSelector).Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, s)
	})
	return nodes, nil
}
