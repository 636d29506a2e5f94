// Package routing provides driving distance lookups against an OSRM routing service.
//
// The batch lookup sends one table request for an origin and many destinations
// and converts the resulting distance/duration row into miles and hours. All
// transport, HTTP, and payload errors degrade to per-destination unavailable
// legs so callers can fall back to straight-line distance.
package routing
