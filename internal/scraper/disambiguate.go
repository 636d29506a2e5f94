package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	openCombinedPattern = regexp.MustCompile(`^(\d+)/(\d+)%`)
	openTotalPattern    = regexp.MustCompile(`^(\d+)/(\d+)`)
)

// ParseOpenTotal parses an "open/total" count as shown in listing tables.
//
// Listings concatenate the percentage onto the total with no delimiter, so
// "9/1476% Open" means 9 of 147 open (6%). Every split of the trailing digits
// into total and percentage is scored by how well open/total agrees with the
// parsed percentage, with a penalty for implausibly large totals; the lowest
// score wins. Text without a percentage is read as a plain "open/total".
// Both results are nil when nothing can be parsed.
func ParseOpenTotal(text string) (open, total *int) {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" {
		return nil, nil
	}

	m := openCombinedPattern.FindStringSubmatch(text)
	if m == nil {
		m = openTotalPattern.FindStringSubmatch(text)
		if m == nil {
			return nil, nil
		}
		o, err1 := strconv.Atoi(m[1])
		t, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			return nil, nil
		}
		return &o, &t
	}

	o, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, nil
	}
	combined := m[2]

	best, bestScore := -1, math.MaxInt
	for _, pctLen := range []int{3, 2, 1} {
		if len(combined) <= pctLen {
			continue
		}
		t, err := strconv.Atoi(combined[:len(combined)-pctLen])
		if err != nil {
			continue
		}
		pct, err := strconv.Atoi(combined[len(combined)-pctLen:])
		if err != nil {
			continue
		}
		if pct < 0 || pct > 100 || t <= 0 || t < o {
			continue
		}

		// fully open
		if pctLen == 3 && pct == 100 && t == o {
			return &o, &t
		}

		calculated := int(math.RoundToEven(float64(o) / float64(t) * 100))
		score := abs(calculated-pct) + realismPenalty(t)
		if score < bestScore {
			best, bestScore = t, score
		}
	}

	if best < 0 {
		return nil, nil
	}
	return &o, &best
}

// realismPenalty favors totals in the range real resorts have
func realismPenalty(total int) int {
	switch {
	case total > 1000:
		return 500
	case total > 500:
		return 100
	default:
		return 0
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
