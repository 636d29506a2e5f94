package geocode

import (
	"regexp"
	"strings"
)

// StateNames maps USPS abbreviations to full state names
var StateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

var (
	zipPattern       = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	stateAbbrPattern = regexp.MustCompile(`,\s*([A-Za-z]{2})$`)
)

// IsZip reports whether text is a US zip or zip+4 code
func IsZip(text string) bool {
	return zipPattern.MatchString(text)
}

// NormalizeZip returns the 5-digit form of a zip code
func NormalizeZip(zip string) string {
	if len(zip) > 5 {
		return zip[:5]
	}
	return zip
}

// ExpandState replaces a trailing ", ST" abbreviation with the full state name.
// "Denver, co" becomes "Denver, Colorado". Unknown abbreviations are left alone.
func ExpandState(location string) string {
	loc := stateAbbrPattern.FindStringSubmatchIndex(location)
	if loc == nil {
		return location
	}
	abbr := strings.ToUpper(location[loc[2]:loc[3]])
	name, ok := StateNames[abbr]
	if !ok {
		return location
	}
	return location[:loc[0]] + ", " + name
}
