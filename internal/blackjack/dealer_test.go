package blackjack

import "testing"

func TestStandardPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		hit   bool
	}{
		{4, true},
		{12, true},
		{16, true},
		{17, false},
		{18, false},
		{21, false},
		{22, false},
	}

	for _, tt := range tests {
		if got := StandardPolicy(tt.score, []int{19, 20}); got != tt.hit {
			t.Errorf("StandardPolicy(%d): expected hit=%v, got %v", tt.score, tt.hit, got)
		}
	}
}

func TestStandardPolicyIgnoresPlayerScores(t *testing.T) {
	t.Parallel()

	if StandardPolicy(17, []int{21, 21}) {
		t.Error("standard dealer stands on 17 even when beaten")
	}
	if !StandardPolicy(16, nil) {
		t.Error("standard dealer hits 16 even with no survivors")
	}
}

func TestAdaptivePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dealer  int
		players []int
		hit     bool
	}{
		{"chases past 17", 17, []int{19}, true},
		{"chases the best survivor", 18, []int{15, 20}, true},
		{"stands early once everyone is beaten", 15, []int{13, 14}, false},
		{"stands on equal score", 18, []int{18}, false},
		{"no survivors means no draw", 10, nil, false},
		{"never draws busted", 22, []int{20}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AdaptivePolicy(tt.dealer, tt.players); got != tt.hit {
				t.Errorf("expected hit=%v, got %v", tt.hit, got)
			}
		})
	}
}
