// Package resort provides the cached ski resort record shared by the scraper,
// the storage layer, and the ranking engine.
//
// Each resort is keyed by a slug derived from its name, so repeated scrapes of
// the same resort always land on the same record. Percentages are computed from
// the open/total counts on demand and are never stored.
package resort
