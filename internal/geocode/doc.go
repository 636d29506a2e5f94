// Package geocode resolves user-entered locations to coordinates through a
// Nominatim (OpenStreetMap) server.
//
// US zip codes are looked up by postal code; anything else is treated as
// "city, ST" text with the state abbreviation expanded. Requests are limited to
// one per second, as Nominatim's usage policy asks, and results (including
// misses) are cached in memory or in Redis.
package geocode
