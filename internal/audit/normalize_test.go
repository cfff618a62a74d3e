package audit

import "testing"

func TestNormalizeSeverity(t *testing.T) {
	tests := []struct {
		raw  string
		want Severity
	}{
		{"critical", SeverityCritical},
		{"CRITICAL", SeverityCritical},
		{"crit", SeverityCritical},
		{"high", SeverityHigh},
		{"Major", SeverityHigh},
		{"medium", SeverityMedium},
		{"warning", SeverityMedium},
		{"low", SeverityLow},
		{"informational", SeverityLow},
		{"note", SeverityLow},
		{"none", SeverityNone},
		{"", SeverityNone},
		{"  high  ", SeverityHigh},
		{"bogus-label", SeverityMedium},
	}
	for _, tt := range tests {
		if got := NormalizeSeverity(tt.raw); got != tt.want {
			t.Errorf("NormalizeSeverity(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want Category
	}{
		{"reentrancy", CategoryReentrancy},
		{"Reentrancy-ETH", CategoryReentrancy},
		{"access_control", CategoryAccessControl},
		{"tx-origin", CategoryAccessControl},
		{"integer overflow", CategoryOverflow},
		{"underflow", CategoryOverflow},
		{"unchecked-send", CategoryUncheckedCall},
		{"low_level_call", CategoryUncheckedCall},
		{"delegate call", CategoryDelegatecall},
		{"bad-randomness", CategoryRandomness},
		{"block   timestamp", CategoryRandomness},
		{"SUICIDE", CategorySelfDestruct},
		{"denial-of-service", CategoryDoS},
		{"dos", CategoryDoS},
		{"something-novel", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.raw); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSeverityBlocks(t *testing.T) {
	if SeverityMedium.Blocks() {
		t.Error("medium must not block")
	}
	if !SeverityHigh.Blocks() {
		t.Error("high must block")
	}
	if !SeverityCritical.Blocks() {
		t.Error("critical must block")
	}
}

func TestLocationOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Location
		want bool
	}{
		{"same line", Location{Line: 5}, Location{Line: 5}, true},
		{"disjoint lines", Location{Line: 5}, Location{Line: 9}, false},
		{"range contains line", Location{Line: 3, EndLine: 10}, Location{Line: 7}, true},
		{"ranges touch", Location{Line: 3, EndLine: 5}, Location{Line: 5, EndLine: 8}, true},
		{"ranges disjoint", Location{Line: 3, EndLine: 5}, Location{Line: 6, EndLine: 8}, false},
		{"different files", Location{File: "A.sol", Line: 5}, Location{File: "B.sol", Line: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("Overlaps (reversed) = %v, want %v", got, tt.want)
			}
		})
	}
}
