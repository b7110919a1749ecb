package headless

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePage = `
<html><body>
<ytd-search>
  <ytd-video-renderer>
    <a id="thumbnail" href="/shorts/AAA111"></a>
    <yt-formatted-string class="style-scope ytd-video-renderer">첫번째 쇼츠</yt-formatted-string>
  </ytd-video-renderer>
  <ytd-channel-renderer></ytd-channel-renderer>
  <ytd-video-renderer>
    <a id="thumbnail" href="/watch?v=BBB222"></a>
    <yt-formatted-string class="style-scope ytd-video-renderer">일반 영상</yt-formatted-string>
  </ytd-video-renderer>
</ytd-search>
</body></html>`

func TestParseResultNodes(t *testing.T) {
	t.Parallel()

	nodes, err := ParseResultNodes(samplePage)
	require.NoError(t, err)
	require.Len(t, nodes, 2, "only video renderer nodes count")

	href, ok := nodes[0].Find("a#thumbnail").Attr("href")
	require.True(t, ok)
	require.Equal(t, "/shorts/AAA111", href)
}

func TestParseResultNodesEmptyPage(t *testing.T) {
	t.Parallel()

	nodes, err := ParseResultNodes("<html><body></body></html>")
	require.NoError(t, err)
	require.Empty(t, nodes)
}
