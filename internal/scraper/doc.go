// Package scraper provides HTTP fetching and HTML extraction for snow report pages.
//
// Each state listing page is parsed with an ordered list of strategies (table,
// row-card, detail-link); the first strategy that recognizes the layout wins.
// Extracted resorts are resolved against the coordinate dataset and upserted by
// slug, so repeated scrapes of the same page converge on the same records. A row
// or page that fails is logged and skipped.
package scraper
