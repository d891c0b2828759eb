package prefilter

import "strings"

// relatedIndustries groups industries that hire from each other's talent
// pools. An exact mismatch inside one group downgrades to a soft penalty
// instead of exclusion.
var relatedIndustries = [][]string{
	{"fintech", "banking", "finance", "insurance"},
	{"edtech", "saas", "tech", "software"},
	{"healthtech", "medtech", "healthcare", "pharma"},
	{"ecommerce", "retail", "marketplace"},
	{"logistics", "transportation", "supply chain"},
	{"gaming", "entertainment", "media"},
}

// industriesRelated reports whether two distinct industries belong to a
// known related grouping.
func industriesRelated(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}

	for _, group := range relatedIndustries {
		foundA, foundB := false, false
		for _, industry := range group {
			if industry == a {
				foundA = true
			}
			if industry == b {
				foundB = true
			}
		}
		if foundA && foundB {
			return true
		}
	}
	return false
}
