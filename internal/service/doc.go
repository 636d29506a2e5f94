// Package service wires the resort cache, scraper, geocoder and ranking
// engine into the operations the API and CLI expose: refresh-on-read resort
// listing, location search and seeding.
package service
