package shorts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nodesFromHTML(t *testing.T, html string) []*goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	var nodes []*goquery.Selection
	doc.Find("ytd-video-renderer").Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, s)
	})
	return nodes
}

type fakeSession struct {
	batches   [][]*goquery.Selection
	searchErr error
	calls     int
	closes    int
}

func (s *fakeSession) Search(_ context.Context, _ string) ([]*goquery.Selection, error) {
	s.calls++
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if len(s.batches) == 0 {
		return nil, nil
	}
	batch := s.batches[0]
	if len(s.batches) > 1 {
		s.batches = s.batches[1:]
	}
	return batch, nil
}

func (s *fakeSession) Close() { s.closes++ }

type fakeFetcher struct {
	session *fakeSession
	err     error
}

func (f *fakeFetcher) NewSession(_ context.Context) (SearchSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type fakeMetadata struct {
	likes   map[string]int64
	failFor map[string]bool
	calls   int
}

func (m *fakeMetadata) Popularity(_ context.Context, videoID string) (int64, error) {
	m.calls++
	if m.failFor[videoID] {
		return 0, errors.New("metadata provider down")
	}
	return m.likes[videoID], nil
}

func shortsBatch(t *testing.T, ids ...string) []*goquery.Selection {
	t.Helper()
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(renderedResult("제목 "+id, "/shorts/"+id))
	}
	return nodesFromHTML(t, b.String())
}

func watchBatch(t *testing.T, ids ...string) []*goquery.Selection {
	t.Helper()
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(renderedResult("제목 "+id, "https://www.youtube.com/watch?v="+id))
	}
	return nodesFromHTML(t, b.String())
}

func TestShortFormPipelineRanksAndTruncates(t *testing.T) {
	t.Parallel()

	session := &fakeSession{batches: [][]*goquery.Selection{
		shortsBatch(t, "aa", "bb", "cc", "dd"),
	}}
	meta := &fakeMetadata{likes: map[string]int64{"aa": 5, "bb": 40, "cc": 10, "dd": 7}}
	p := NewPipeline(&fakeFetcher{session: session}, meta, ShortFormConfig(), zap.NewNop())

	got, err := p.Run(context.Background(), 42, "운동화")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []string{"bb", "cc", "dd"}, []string{got[0].VideoID, got[1].VideoID, got[2].VideoID})
	require.Equal(t, int64(40), got[0].Popularity)
	require.Equal(t, 42, got[0].ProductCode)
	require.Equal(t, 1, session.calls, "three survivors means no retry")
	require.Equal(t, 1, session.closes)
}

func TestShortFormPipelineRetriesWhileShort(t *testing.T) {
	t.Parallel()

	// Every cycle yields the same lone survivor, so the pipeline exhausts
	// its retries and keeps the duplicates.
	session := &fakeSession{batches: [][]*goquery.Selection{
		shortsBatch(t, "aa"),
	}}
	cfg := ShortFormConfig()
	cfg.MaxRetries = 2
	meta := &fakeMetadata{likes: map[string]int64{"aa": 2}}
	p := NewPipeline(&fakeFetcher{session: session}, meta, cfg, zap.NewNop())

	got, err := p.Run(context.Background(), 42, "운동화")
	require.NoError(t, err)
	require.Equal(t, 3, session.calls, "one initial cycle plus two retries")
	require.Len(t, got, 3, "accumulated duplicates are not deduplicated")
	require.Equal(t, "aa", got[1].VideoID)
	require.Equal(t, 1, session.closes)
}

func TestShortFormPipelineStopsRetryingOnceEnough(t *testing.T) {
	t.Parallel()

	session := &fakeSession{batches: [][]*goquery.Selection{
		shortsBatch(t, "aa", "bb"),
		shortsBatch(t, "cc", "dd"),
	}}
	meta := &fakeMetadata{likes: map[string]int64{"aa": 1, "bb": 2, "cc": 3, "dd": 4}}
	p := NewPipeline(&fakeFetcher{session: session}, meta, ShortFormConfig(), zap.NewNop())

	got, err := p.Run(context.Background(), 42, "운동화")
	require.NoError(t, err)
	require.Equal(t, 2, session.calls, "second cycle pushed survivors past the threshold")
	require.Len(t, got, 3)
}

func TestPipelineReturnsEmptyWithoutRetryOnZeroEntries(t *testing.T) {
	t.Parallel()

	session := &fakeSession{}
	p := NewPipeline(&fakeFetcher{session: session}, &fakeMetadata{}, ShortFormConfig(), zap.NewNop())

	got, err := p.Run(context.Background(), 42, "운동화")
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, 1, session.calls, "zero raw entries never retries")
	require.Equal(t, 1, session.closes)
}

func TestStandardPipelineCapsRawEntries(t *testing.T) {
	t.Parallel()

	ids := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		ids = append(ids, fmt.Sprintf("vid%02d", i))
	}
	session := &fakeSession{batches: [][]*goquery.Selection{watchBatch(t, ids...)}}
	meta := &fakeMetadata{likes: map[string]int64{}}
	p := NewPipeline(&fakeFetcher{session: session}, meta, StandardConfig(), zap.NewNop())

	got, err := p.Run(context.Background(), 42, "운동화")
	require.NoError(t, err)
	require.Len(t, got, 10, "only the first ten raw entries are processed")
	require.Equal(t, 10, meta.calls)
	require.Equal(t, 1, session.calls, "standard search never retries")
}

func TestPipelineMetadataFailureIsolated(t *testing.T) {
	t.Parallel()

	session := &fakeSession{batches: [][]*goquery.Selection{
		shortsBatch(t, "aa", "bb", "cc"),
	}}
	meta := &fakeMetadata{
		likes:   map[string]int64{"aa": 9, "cc": 4},
		failFor: map[string]bool{"bb": true},
	}
	p := NewPipeline(&fakeFetcher{session: session}, meta, ShortFormConfig(), zap.NewNop())

	got, err := p.Run(context.Background(), 42, "운동화")
	require.NoError(t, err)
	require.Len(t, got, 3)
	byID := map[string]int64{}
	for _, c := range got {
		byID[c.VideoID] = c.Popularity
	}
	require.Equal(t, int64(0), byID["bb"], "failed lookup degrades to zero")
	require.Equal(t, int64(9), byID["aa"])
	require.Equal(t, int64(4), byID["cc"])
}

func TestPipelineBadNodeSkippedNotFatal(t *testing.T) {
	t.Parallel()

	html := `<ytd-video-renderer><a id="thumbnail" href="/shorts/bad"></a></ytd-video-renderer>` +
		renderedResult("제목", "/shorts/good")
	session := &fakeSession{batches: [][]*goquery.Selection{nodesFromHTML(t, html)}}
	meta := &fakeMetadata{likes: map[string]int64{"good": 3}}
	p := NewPipeline(&fakeFetcher{session: session}, meta, ShortFormConfig(), zap.NewNop())

	got, err := p.Run(context.Background(), 42, "운동화")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "good", got[0].VideoID)
}

func TestPipelineFetchErrorReturnsAccumulated(t *testing.T) {
	t.Parallel()

	session := &fakeSession{searchErr: errors.New("navigation timeout")}
	p := NewPipeline(&fakeFetcher{session: session}, &fakeMetadata{}, ShortFormConfig(), zap.NewNop())

	got, err := p.Run(context.Background(), 42, "운동화")
	require.NoError(t, err, "fetch failures degrade to an empty result")
	require.Empty(t, got)
	require.Equal(t, 1, session.closes, "session released on the error path")
}

func TestPipelineSessionAcquisitionError(t *testing.T) {
	t.Parallel()

	p := NewPipeline(&fakeFetcher{err: errors.New("browser unavailable")}, &fakeMetadata{}, ShortFormConfig(), zap.NewNop())

	_, err := p.Run(context.Background(), 42, "운동화")
	require.Error(t, err)
}
