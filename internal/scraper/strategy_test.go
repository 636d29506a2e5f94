package scraper

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/ski-spot/internal/resort"
)

const testBaseURL = "https://snow.example.com"

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/" + name)
	require.NoError(t, err, "failed to load test fixture")
	return string(data)
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func bySlug(records []*resort.Resort) map[string]*resort.Resort {
	out := make(map[string]*resort.Resort, len(records))
	for _, r := range records {
		out[r.Slug] = r
	}
	return out
}

func intVal(t *testing.T, v *int) int {
	t.Helper()
	require.NotNil(t, v)
	return *v
}

// fakeFetcher serves pages from a map and fails for anything else
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return "", errors.New("unexpected status code: 404")
	}
	return body, nil
}

func TestTableStrategy(t *testing.T) {
	doc := parseDoc(t, loadFixture(t, "colorado_table.html"))

	records, err := TableStrategy{BaseURL: testBaseURL}.Extract(context.Background(), doc, "Colorado")
	require.NoError(t, err)
	require.Len(t, records, 4, "rows without a link or with too few cells are skipped")

	got := bySlug(records)

	vail := got["vail"]
	require.NotNil(t, vail)
	assert.Equal(t, "Vail", vail.Name)
	assert.Equal(t, testBaseURL+"/colorado/vail/snow-report.html", vail.SourceURL)
	assert.Equal(t, 6, intVal(t, vail.NewSnow24h))
	assert.Equal(t, 48, intVal(t, vail.BaseDepth))
	assert.Equal(t, 195, intVal(t, vail.TrailsOpen))
	assert.Equal(t, 195, intVal(t, vail.TrailsTotal))
	assert.Equal(t, 31, intVal(t, vail.LiftsOpen))
	assert.Equal(t, 31, intVal(t, vail.LiftsTotal))
	assert.True(t, vail.IsOpen)
	assert.False(t, vail.HasCoordinates(), "the strategy does not resolve coordinates")

	breck := got["breckenridge"]
	require.NotNil(t, breck)
	assert.Equal(t, "Breckenridge", breck.Name)
	assert.Equal(t, 0, intVal(t, breck.NewSnow24h))
	assert.Equal(t, 16, intVal(t, breck.BaseDepth), "ranges keep the lower bound")
	assert.Equal(t, 147, intVal(t, breck.TrailsTotal))
	assert.Equal(t, 9, intVal(t, breck.LiftsTotal))

	copper := got["copper-mountain"]
	require.NotNil(t, copper)
	assert.Equal(t, "Copper Mountain", copper.Name)
	assert.Equal(t, 188, intVal(t, copper.TrailsTotal))
	assert.Nil(t, copper.LiftsOpen)
	assert.Nil(t, copper.LiftsTotal)

	tiny := got["tiny-hill"]
	require.NotNil(t, tiny)
	assert.Nil(t, tiny.NewSnow24h)
	assert.Nil(t, tiny.BaseDepth)
	assert.Nil(t, tiny.TrailsOpen)
	assert.False(t, tiny.IsOpen, "is_open comes from counts, and no lift is open")
}

func TestTableStrategy_NoTable(t *testing.T) {
	doc := parseDoc(t, `<html><body><table><tr><th>Header only</th></tr></table></body></html>`)

	_, err := TableStrategy{}.Extract(context.Background(), doc, "Colorado")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestRowCardStrategy(t *testing.T) {
	doc := parseDoc(t, loadFixture(t, "vermont_cards.html"))

	records, err := RowCardStrategy{BaseURL: testBaseURL}.Extract(context.Background(), doc, "Vermont")
	require.NoError(t, err)
	require.Len(t, records, 3)

	got := bySlug(records)

	stowe := got["stowe"]
	require.NotNil(t, stowe)
	assert.Equal(t, 28, intVal(t, stowe.BaseDepth))
	assert.Equal(t, 3, intVal(t, stowe.NewSnow24h))
	assert.Equal(t, 116, intVal(t, stowe.TrailsOpen))
	assert.Equal(t, 116, intVal(t, stowe.TrailsTotal))
	assert.Equal(t, 12, intVal(t, stowe.LiftsOpen))
	assert.Equal(t, 13, intVal(t, stowe.LiftsTotal))
	assert.True(t, stowe.IsOpen)

	jay := got["jay-peak"]
	require.NotNil(t, jay, "the snow report link is preferred for the name")
	assert.Equal(t, testBaseURL+"/vermont/jay-peak/snow-report.html", jay.SourceURL)
	assert.Equal(t, 36, intVal(t, jay.BaseDepth))
	assert.Nil(t, jay.NewSnow24h)
	assert.Equal(t, 78, intVal(t, jay.TrailsOpen))
	assert.Equal(t, 81, intVal(t, jay.TrailsTotal))
	assert.Equal(t, 9, intVal(t, jay.LiftsTotal))

	mrg := got["mad-river-glen"]
	require.NotNil(t, mrg)
	assert.Nil(t, mrg.TrailsOpen)
	assert.Nil(t, mrg.LiftsOpen)
	assert.False(t, mrg.IsOpen)
}

func TestRowCardStrategy_NoCards(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>Nothing here</p></body></html>`)

	_, err := RowCardStrategy{}.Extract(context.Background(), doc, "Vermont")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestDetailLinkStrategy(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		testBaseURL + "/utah/alta/snow-report.html":     loadFixture(t, "alta_detail.html"),
		testBaseURL + "/utah/snowbird/snow-report.html": loadFixture(t, "snowbird_detail.html"),
	}}
	doc := parseDoc(t, loadFixture(t, "utah_links.html"))

	records, err := DetailLinkStrategy{BaseURL: testBaseURL, Fetcher: fetcher}.Extract(context.Background(), doc, "Utah")
	require.NoError(t, err)
	assert.Len(t, fetcher.calls, 3, "duplicate links are fetched once")
	require.Len(t, records, 2, "a page that fails to load is skipped")

	got := bySlug(records)

	alta := got["alta"]
	require.NotNil(t, alta)
	assert.Equal(t, "Alta", alta.Name)
	assert.Equal(t, testBaseURL+"/utah/alta/snow-report.html", alta.SourceURL)
	require.True(t, alta.HasCoordinates())
	assert.InDelta(t, 40.5884, *alta.Latitude, 1e-9)
	assert.InDelta(t, -111.6386, *alta.Longitude, 1e-9)
	assert.Equal(t, 82, intVal(t, alta.BaseDepth))
	assert.Equal(t, 11, intVal(t, alta.NewSnow24h))
	assert.Equal(t, 116, intVal(t, alta.TrailsTotal))
	assert.Equal(t, 10, intVal(t, alta.LiftsOpen))
	assert.True(t, alta.IsOpen)

	bird := got["snowbird"]
	require.NotNil(t, bird)
	assert.Equal(t, "Snowbird", bird.Name)
	require.True(t, bird.HasCoordinates())
	assert.InDelta(t, 40.5830, *bird.Latitude, 1e-9)
	assert.InDelta(t, -111.6538, *bird.Longitude, 1e-9)
	assert.Equal(t, 78, intVal(t, bird.BaseDepth))
	assert.Equal(t, 9, intVal(t, bird.NewSnow24h))
	assert.Equal(t, 169, intVal(t, bird.TrailsOpen))
	assert.Equal(t, 13, intVal(t, bird.LiftsOpen))
	assert.Equal(t, 14, intVal(t, bird.LiftsTotal))
}

func TestDetailLinkStrategy_NoLinks(t *testing.T) {
	doc := parseDoc(t, `<html><body><a href="/about.html">About</a></body></html>`)

	_, err := DetailLinkStrategy{Fetcher: &fakeFetcher{}}.Extract(context.Background(), doc, "Utah")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestParseDetailPage_NoHeading(t *testing.T) {
	doc := parseDoc(t, `<html><body><p>Base: 40"</p></body></html>`)
	assert.Nil(t, ParseDetailPage(doc))
}

func TestStrippedText(t *testing.T) {
	doc := parseDoc(t, `<div id="x"> <span>9/147</span>
		<span>6%</span> Open </div>`)
	assert.Equal(t, "9/1476%Open", strippedText(doc.Find("#x")))
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{testBaseURL, "/utah/alta/snow-report.html", testBaseURL + "/utah/alta/snow-report.html"},
		{testBaseURL, "https://other.example.com/x", "https://other.example.com/x"},
		{"", "/relative", "/relative"},
		{testBaseURL, "", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, absoluteURL(tt.base, tt.href), "absoluteURL(%q, %q)", tt.base, tt.href)
	}
}
