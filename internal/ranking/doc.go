// Package ranking ranks cached resorts near a user location.
//
// Ranking is a two-stage filter: a cheap straight-line pre-filter bounds the set
// of candidates, then one batched driving-distance lookup resolves the survivors.
// Candidates are scored on snow quality and relative closeness and combined with
// a weighted geometric mean, so a resort must do reasonably well on both axes to
// rank highly.
package ranking
