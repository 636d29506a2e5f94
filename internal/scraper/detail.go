package scraper

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/ski-spot/internal/logger"
	"github.com/pfrederiksen/ski-spot/internal/resort"
)

var (
	snowReportSuffix = regexp.MustCompile(`(?i)\s*Snow Report.*`)
	skiResortSuffix  = regexp.MustCompile(`(?i)\s*Ski Resort.*`)

	latitudePattern  = regexp.MustCompile(`"latitude":\s*([-\d.]+)`)
	longitudePattern = regexp.MustCompile(`"longitude":\s*([-\d.]+)`)
	centerPattern    = regexp.MustCompile(`center:\s*\[\s*([-\d.]+),\s*([-\d.]+)\s*\]`)

	detailBasePattern    = regexp.MustCompile(`(?i)base[:\s]+(\d+)"?`)
	detailNewSnowPattern = regexp.MustCompile(`(?i)new\s+(?:snow\s+)?(\d+)"?\s*(?:in\s+)?(?:24|past)`)
	detailTrailsPattern  = regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*(?:trails|runs)`)
	detailLiftsPattern   = regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*lifts`)
)

// DetailLinkStrategy is the last resort: it follows every snow report link on
// the listing page and reads each resort's own page.
type DetailLinkStrategy struct {
	BaseURL string
	Fetcher Fetcher
}

func (DetailLinkStrategy) Name() string { return "detail-link" }

func (s DetailLinkStrategy) Extract(ctx context.Context, doc *goquery.Document, region string) ([]*resort.Resort, error) {
	links := doc.Find(`a[href*="/snow-report.html"]`)
	if links.Length() == 0 || s.Fetcher == nil {
		return nil, ErrNoMatch
	}

	seen := make(map[string]bool)
	var urls []string
	links.Each(func(_ int, a *goquery.Selection) {
		u := absoluteURL(s.BaseURL, a.AttrOr("href", ""))
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	})

	records := make([]*resort.Resort, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		body, err := s.Fetcher.Fetch(ctx, u)
		if err != nil {
			logger.Error("Failed to fetch resort page", logger.Fields{"region": region, "url": u}, err)
			continue
		}
		page, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			logger.Error("Failed to parse resort page", logger.Fields{"region": region, "url": u}, err)
			continue
		}

		r := ParseDetailPage(page)
		if r == nil {
			logger.Debug("Resort page has no heading", logger.Fields{"url": u})
			continue
		}
		r.SourceURL = u
		records = append(records, r)
	}
	return records, nil
}

// ParseDetailPage extracts a resort from its snow report page. It returns nil
// when the page has no usable heading.
func ParseDetailPage(page *goquery.Document) *resort.Resort {
	h1 := page.Find("h1").First()
	if h1.Length() == 0 {
		return nil
	}

	name := strippedText(h1)
	name = snowReportSuffix.ReplaceAllString(name, "")
	name = skiResortSuffix.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	slug := resort.Slugify(name)
	if slug == "" {
		return nil
	}

	r := &resort.Resort{Slug: slug, Name: name}
	r.Latitude, r.Longitude = scriptCoordinates(page)

	text := page.Text()
	r.BaseDepth = firstInt(detailBasePattern, text)
	r.NewSnow24h = firstInt(detailNewSnowPattern, text)
	r.TrailsOpen, r.TrailsTotal = loosePair(text, []*regexp.Regexp{detailTrailsPattern})
	r.LiftsOpen, r.LiftsTotal = loosePair(text, []*regexp.Regexp{detailLiftsPattern})
	r.DeriveOpen()
	return r
}

// scriptCoordinates looks for coordinates embedded in inline scripts, either
// as JSON latitude/longitude keys or a map center:[lat, lng] literal
func scriptCoordinates(page *goquery.Document) (lat, lng *float64) {
	page.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		text := script.Text()

		la := latitudePattern.FindStringSubmatch(text)
		lo := longitudePattern.FindStringSubmatch(text)
		if la != nil && lo != nil {
			if a, b, ok := parsePair(la[1], lo[1]); ok {
				lat, lng = &a, &b
				return false
			}
		}

		if m := centerPattern.FindStringSubmatch(text); m != nil {
			if a, b, ok := parsePair(m[1], m[2]); ok {
				lat, lng = &a, &b
				return false
			}
		}
		return true
	})
	return lat, lng
}

func parsePair(a, b string) (float64, float64, bool) {
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}
