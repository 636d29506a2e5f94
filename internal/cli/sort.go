package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/ski-spot/internal/resort"
)

// SortOrder represents the available listing sort options
type SortOrder string

const (
	SortByName  SortOrder = "name"
	SortByState SortOrder = "state"
	SortBySnow  SortOrder = "snow"
)

// sortResorts sorts a slice of resorts based on the specified sort order
func sortResorts(records []*resort.Resort, sortOrder SortOrder) {
	switch sortOrder {
	case SortByName:
		sort.SliceStable(records, func(i, j int) bool {
			return compareByName(records[i], records[j])
		})
	case SortByState:
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].State != records[j].State {
				return records[i].State < records[j].State
			}
			// If states are equal, sort by name
			return compareByName(records[i], records[j])
		})
	case SortBySnow:
		sort.SliceStable(records, func(i, j int) bool {
			return compareBySnow(records[i], records[j])
		})
	}
}

func compareByName(i, j *resort.Resort) bool {
	return strings.ToLower(i.Name) < strings.ToLower(j.Name)
}

// compareBySnow puts the deepest base first, then the most new snow.
// Resorts without a reported base go last.
func compareBySnow(i, j *resort.Resort) bool {
	baseI, okI := value(i.BaseDepth)
	baseJ, okJ := value(j.BaseDepth)

	if okI != okJ {
		return okI
	}
	if baseI != baseJ {
		return baseI > baseJ
	}

	newI, _ := value(i.NewSnow24h)
	newJ, _ := value(j.NewSnow24h)
	if newI != newJ {
		return newI > newJ
	}
	return compareByName(i, j)
}

func value(v *int) (int, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

// filterByState keeps resorts in state, matched case-insensitively
func filterByState(records []*resort.Resort, state string) []*resort.Resort {
	if state == "" {
		return records
	}
	filtered := make([]*resort.Resort, 0)
	for _, r := range records {
		if strings.EqualFold(r.State, state) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
