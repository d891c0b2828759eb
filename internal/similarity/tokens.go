package similarity

import "strings"

// NormalizeSkill canonicalizes a skill name for set comparison: lowercase,
// trimmed, inner whitespace collapsed.
func NormalizeSkill(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// SkillSet builds a set of normalized skill names, dropping empties.
func SkillSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, s := range skills {
		if n := NormalizeSkill(s); n != "" {
			set[n] = true
		}
	}
	return set
}

// SkillOverlap returns the fraction of required skills present in the
// candidate set, in [0, 1]. An empty requirement set counts as full overlap.
func SkillOverlap(required []string, have map[string]bool) float64 {
	reqSet := SkillSet(required)
	if len(reqSet) == 0 {
		return 1
	}
	matched := 0
	for skill := range reqSet {
		if have[skill] {
			matched++
		}
	}
	return float64(matched) / float64(len(reqSet))
}
