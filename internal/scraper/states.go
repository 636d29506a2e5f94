package scraper

// State is one state listing page on the snow report site
type State struct {
	Name   string
	Path   string
	Region string
}

// States lists the US states with ski resorts, in scrape order
var States = []State{
	{"Colorado", "/colorado/skireport.html", "Rocky Mountains"},
	{"California", "/california/skireport.html", "West"},
	{"Utah", "/utah/skireport.html", "Rocky Mountains"},
	{"Vermont", "/vermont/skireport.html", "Northeast"},
	{"Montana", "/montana/skireport.html", "Rocky Mountains"},
	{"Wyoming", "/wyoming/skireport.html", "Rocky Mountains"},
	{"New Mexico", "/new-mexico/skireport.html", "Rocky Mountains"},
	{"Idaho", "/idaho/skireport.html", "Rocky Mountains"},
	{"Oregon", "/oregon/skireport.html", "Pacific Northwest"},
	{"Washington", "/washington/skireport.html", "Pacific Northwest"},
	{"New Hampshire", "/new-hampshire/skireport.html", "Northeast"},
	{"Maine", "/maine/skireport.html", "Northeast"},
	{"New York", "/new-york/skireport.html", "Northeast"},
	{"Michigan", "/michigan/skireport.html", "Midwest"},
	{"Wisconsin", "/wisconsin/skireport.html", "Midwest"},
	{"Minnesota", "/minnesota/skireport.html", "Midwest"},
	{"Pennsylvania", "/pennsylvania/skireport.html", "Mid-Atlantic"},
	{"West Virginia", "/west-virginia/skireport.html", "Mid-Atlantic"},
	{"Virginia", "/virginia/skireport.html", "Southeast"},
	{"North Carolina", "/north-carolina/skireport.html", "Southeast"},
	{"Massachusetts", "/massachusetts/skireport.html", "Northeast"},
	{"Connecticut", "/connecticut/skireport.html", "Northeast"},
	{"Nevada", "/nevada/skireport.html", "West"},
	{"Arizona", "/arizona/skireport.html", "West"},
	{"Alaska", "/alaska/skireport.html", "Alaska"},
	{"South Dakota", "/south-dakota/skireport.html", "Midwest"},
}

// RegionOf returns the broader region for a state name, or the name itself
// when it is not a known state
func RegionOf(state string) string {
	for _, s := range States {
		if s.Name == state {
			return s.Region
		}
	}
	return state
}

// LookupState finds a state by name
func LookupState(name string) (State, bool) {
	for _, s := range States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}
