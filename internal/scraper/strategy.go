package scraper

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/ski-spot/internal/logger"
	"github.com/pfrederiksen/ski-spot/internal/resort"
)

// ErrNoMatch is returned by a Strategy when the page does not use its layout
var ErrNoMatch = errors.New("layout not recognized")

// Strategy extracts resort records from one page layout
type Strategy interface {
	Name() string
	Extract(ctx context.Context, doc *goquery.Document, region string) ([]*resort.Resort, error)
}

// DefaultStrategies returns the strategies in the order they should be tried.
// Relative links are resolved against baseURL; fetcher loads detail pages.
func DefaultStrategies(baseURL string, fetcher Fetcher) []Strategy {
	return []Strategy{
		TableStrategy{BaseURL: baseURL},
		RowCardStrategy{BaseURL: baseURL},
		DetailLinkStrategy{BaseURL: baseURL, Fetcher: fetcher},
	}
}

var (
	updatedAgoPattern = regexp.MustCompile(`(?i)\d+\s*(hours?|days?|minutes?)\s*ago$`)
	newSnowPattern    = regexp.MustCompile(`(\d+)"`)
	baseDepthPattern  = regexp.MustCompile(`^(\d+)(?:-\d+)?"`)
)

// TableStrategy reads the current listing layout: one table row per resort with
// name, 24h snowfall, forecast, base depth, trails and lifts cells.
type TableStrategy struct {
	BaseURL string
}

func (TableStrategy) Name() string { return "table" }

func (s TableStrategy) Extract(_ context.Context, doc *goquery.Document, region string) ([]*resort.Resort, error) {
	rows := doc.Find("table tbody tr")
	if rows.Length() == 0 {
		rows = doc.Find("table tr")
	}
	rows = rows.FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.Find("td").Length() > 0
	})
	if rows.Length() == 0 {
		return nil, ErrNoMatch
	}

	records := make([]*resort.Resort, 0, rows.Length())
	rows.Each(func(i int, row *goquery.Selection) {
		r := s.parseRow(row)
		if r == nil {
			logger.Debug("Skipping table row", logger.Fields{"region": region, "row": i})
			return
		}
		records = append(records, r)
	})
	return records, nil
}

func (s TableStrategy) parseRow(row *goquery.Selection) *resort.Resort {
	cells := row.Find("td")
	if cells.Length() < 5 {
		return nil
	}

	link := cells.Eq(0).Find("a").First()
	if link.Length() == 0 {
		return nil
	}
	name := strings.TrimSpace(updatedAgoPattern.ReplaceAllString(strippedText(link), ""))
	slug := resort.Slugify(name)
	if slug == "" {
		return nil
	}

	r := &resort.Resort{
		Slug:       slug,
		Name:       name,
		SourceURL:  absoluteURL(s.BaseURL, link.AttrOr("href", "")),
		NewSnow24h: firstInt(newSnowPattern, strippedText(cells.Eq(1))),
		BaseDepth:  firstInt(baseDepthPattern, strippedText(cells.Eq(3))),
	}
	r.TrailsOpen, r.TrailsTotal = ParseOpenTotal(strippedText(cells.Eq(4)))
	if cells.Length() > 5 {
		r.LiftsOpen, r.LiftsTotal = ParseOpenTotal(strippedText(cells.Eq(5)))
	}
	r.DeriveOpen()
	return r
}

var (
	trailsLoosePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*trails?`),
		regexp.MustCompile(`(?i)(\d+)/(\d+)`),
	}
	liftsLoosePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*lifts?`),
	}
	baseKeywords    = keywordPatterns("base", "depth")
	newSnowKeywords = keywordPatterns("new", "24h", "24hr")
)

// RowCardStrategy reads the older card layout, where each resort is a div and
// counts appear as free text like "12/40 trails".
type RowCardStrategy struct {
	BaseURL string
}

func (RowCardStrategy) Name() string { return "row-card" }

func (s RowCardStrategy) Extract(_ context.Context, doc *goquery.Document, region string) ([]*resort.Resort, error) {
	rows := doc.Find(`div[data-testid="resort-row"]`)
	if rows.Length() == 0 {
		rows = doc.Find(".styles_row__resort__")
	}
	if rows.Length() == 0 {
		return nil, ErrNoMatch
	}

	records := make([]*resort.Resort, 0, rows.Length())
	rows.Each(func(i int, row *goquery.Selection) {
		r := s.parseRow(row)
		if r == nil {
			logger.Debug("Skipping resort card", logger.Fields{"region": region, "row": i})
			return
		}
		records = append(records, r)
	})
	return records, nil
}

func (s RowCardStrategy) parseRow(row *goquery.Selection) *resort.Resort {
	link := row.Find(`a[href*="snow-report"]`).First()
	if link.Length() == 0 {
		link = row.Find("a").First()
	}
	if link.Length() == 0 {
		return nil
	}

	name := strippedText(link)
	slug := resort.Slugify(name)
	if slug == "" {
		return nil
	}

	text := row.Text()
	lower := strings.ToLower(text)
	r := &resort.Resort{
		Slug:       slug,
		Name:       name,
		SourceURL:  absoluteURL(s.BaseURL, link.AttrOr("href", "")),
		BaseDepth:  keywordNumber(lower, baseKeywords),
		NewSnow24h: keywordNumber(lower, newSnowKeywords),
	}
	r.TrailsOpen, r.TrailsTotal = loosePair(text, trailsLoosePatterns)
	r.LiftsOpen, r.LiftsTotal = loosePair(text, liftsLoosePatterns)
	r.DeriveOpen()
	return r
}

// keywordPatterns builds "kw: 24" and `24" kw` matchers for each keyword
func keywordPatterns(keywords ...string) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, kw := range keywords {
		q := regexp.QuoteMeta(kw)
		out = append(out,
			regexp.MustCompile(`(?i)`+q+`[:\s]+(\d+)`),
			regexp.MustCompile(`(?i)(\d+)"?\s*`+q),
		)
	}
	return out
}

func keywordNumber(text string, patterns []*regexp.Regexp) *int {
	for _, p := range patterns {
		if v := firstInt(p, text); v != nil {
			return v
		}
	}
	return nil
}

// loosePair returns the first "N/M" pair found by any of the patterns
func loosePair(text string, patterns []*regexp.Regexp) (*int, *int) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		o, err1 := strconv.Atoi(m[1])
		t, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		return &o, &t
	}
	return nil, nil
}

func firstInt(p *regexp.Regexp, text string) *int {
	m := p.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}

// strippedText joins the trimmed text nodes under sel in document order
func strippedText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				b.WriteString(strings.TrimSpace(c.Text()))
				return
			}
			walk(c)
		})
	}
	walk(sel)
	return b.String()
}

func absoluteURL(base, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return ref.String()
	}
	return b.ResolveReference(ref).String()
}
