// Package cli implements the command-line interface for ski-spot.
//
// The cli package provides the Cobra-based CLI: serving the HTTP API,
// scraping resort listings into the store, searching for resorts near a
// location, seeding sample data, and listing cached resorts. Output is a
// text table or JSON. It wires configuration, storage, the scraper, routing
// and geocoding together.
package cli
