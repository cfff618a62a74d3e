package audit

import "strings"

// NormalizeSeverity maps an analyzer's severity label into the shared
// scale. Unrecognized labels map to SeverityMedium rather than being
// dropped: an analyzer that bothered to report something should not be
// silently discounted.
func NormalizeSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical", "crit":
		return SeverityCritical
	case "high", "major", "severe":
		return SeverityHigh
	case "medium", "moderate", "warning":
		return SeverityMedium
	case "low", "minor", "info", "informational", "note", "suggestion":
		return SeverityLow
	case "none", "ok", "":
		return SeverityNone
	default:
		return SeverityMedium
	}
}

// categoryAliases maps analyzer-specific category labels onto the shared
// taxonomy. Matching is done on a lowercased, hyphen/underscore-insensitive
// form of the label.
var categoryAliases = map[string]Category{
	"reentrancy":        CategoryReentrancy,
	"reentrant":         CategoryReentrancy,
	"reentrancy eth":    CategoryReentrancy,
	"access control":    CategoryAccessControl,
	"accesscontrol":     CategoryAccessControl,
	"authorization":     CategoryAccessControl,
	"auth":              CategoryAccessControl,
	"tx origin":         CategoryAccessControl,
	"txorigin":          CategoryAccessControl,
	"privilege":         CategoryAccessControl,
	"overflow":          CategoryOverflow,
	"underflow":         CategoryOverflow,
	"integer overflow":  CategoryOverflow,
	"arithmetic":        CategoryOverflow,
	"unchecked call":    CategoryUncheckedCall,
	"uncheckedcall":     CategoryUncheckedCall,
	"unchecked return":  CategoryUncheckedCall,
	"unchecked send":    CategoryUncheckedCall,
	"low level call":    CategoryUncheckedCall,
	"delegatecall":      CategoryDelegatecall,
	"delegate call":     CategoryDelegatecall,
	"randomness":        CategoryRandomness,
	"weak randomness":   CategoryRandomness,
	"bad randomness":    CategoryRandomness,
	"timestamp":         CategoryRandomness,
	"block timestamp":   CategoryRandomness,
	"selfdestruct":      CategorySelfDestruct,
	"self destruct":     CategorySelfDestruct,
	"suicide":           CategorySelfDestruct,
	"denial of service": CategoryDoS,
	"dos":               CategoryDoS,
	"gas limit":         CategoryDoS,
	"unbounded loop":    CategoryDoS,
}

// NormalizeCategory maps an analyzer-specific category label into the
// shared taxonomy. Unknown labels land in CategoryOther so they are kept
// in the report without polluting agreement counts of known categories.
func NormalizeCategory(raw string) Category {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", " ")
	key = strings.ReplaceAll(key, "_", " ")
	key = strings.Join(strings.Fields(key), " ")

	if cat, ok := categoryAliases[key]; ok {
		return cat
	}
	return CategoryOther
}
