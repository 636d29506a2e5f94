package resort

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed samples.json
var samplesJSON []byte

// Samples returns the built-in sample resorts used to seed an empty store
// when scraping is unavailable
func Samples() ([]*Resort, error) {
	var samples []*Resort
	if err := json.Unmarshal(samplesJSON, &samples); err != nil {
		return nil, fmt.Errorf("parsing sample resorts: %w", err)
	}
	return samples, nil
}
