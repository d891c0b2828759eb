package prefilter

import "strings"

// continentByPlace maps lowercased city and country names to a continent
// label. Coverage is intentionally small: upstream normalization produces
// these strings, and unknown places simply fail the same-continent check.
var continentByPlace = map[string]string{
	// Europe
	"berlin": "europe", "munich": "europe", "hamburg": "europe",
	"london": "europe", "manchester": "europe", "dublin": "europe",
	"paris": "europe", "amsterdam": "europe", "rotterdam": "europe",
	"madrid": "europe", "barcelona": "europe", "lisbon": "europe",
	"warsaw": "europe", "krakow": "europe", "prague": "europe",
	"vienna": "europe", "zurich": "europe", "stockholm": "europe",
	"copenhagen": "europe", "oslo": "europe", "helsinki": "europe",
	"milan": "europe", "rome": "europe", "kyiv": "europe",
	"germany": "europe", "uk": "europe", "united kingdom": "europe",
	"france": "europe", "netherlands": "europe", "spain": "europe",
	"portugal": "europe", "poland": "europe", "ireland": "europe",

	// North America
	"new york": "north america", "san francisco": "north america",
	"seattle": "north america", "austin": "north america",
	"boston": "north america", "chicago": "north america",
	"toronto": "north america", "vancouver": "north america",
	"mexico city": "north america",
	"usa": "north america", "united states": "north america",
	"canada": "north america", "mexico": "north america",

	// Asia
	"singapore": "asia", "tokyo": "asia", "bangalore": "asia",
	"mumbai": "asia", "delhi": "asia", "hyderabad": "asia",
	"tel aviv": "asia", "dubai": "asia", "hong kong": "asia",
	"seoul": "asia", "india": "asia", "japan": "asia", "israel": "asia",

	// South America
	"sao paulo": "south america", "buenos aires": "south america",
	"bogota": "south america", "santiago": "south america",
	"brazil": "south america", "argentina": "south america",

	// Africa
	"lagos": "africa", "nairobi": "africa", "cape town": "africa",
	"cairo": "africa", "nigeria": "africa", "kenya": "africa",
	"south africa": "africa", "egypt": "africa",

	// Oceania
	"sydney": "oceania", "melbourne": "oceania", "auckland": "oceania",
	"australia": "oceania", "new zealand": "oceania",
}

// sameContinent reports whether two locations resolve to the same
// continent. A remote location matches every continent. Unknown locations
// never match.
func sameContinent(a, b string) bool {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	if na == "remote" || nb == "remote" {
		return true
	}

	ca, okA := lookupContinent(na)
	cb, okB := lookupContinent(nb)
	return okA && okB && ca == cb
}

// lookupContinent resolves a location string, trying the full string first
// and then its comma-separated parts ("Berlin, Germany").
func lookupContinent(place string) (string, bool) {
	if c, ok := continentByPlace[place]; ok {
		return c, true
	}
	for _, part := range strings.Split(place, ",") {
		if c, ok := continentByPlace[strings.TrimSpace(part)]; ok {
			return c, true
		}
	}
	return "", false
}
