package app

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/henri123lemoine/canopy/internal/config"
)

func TestKeyMapFromConfigOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keys.NextMatch = "ctrl+j"
	cfg.Keys.PrevMatch = "ctrl+k"
	km := KeyMapFromConfig(&cfg.Keys)

	if diff := cmp.Diff([]string{"ctrl+j"}, km.NextMatch.Keys()); diff != "" {
		t.Errorf("next match keys (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ctrl+k"}, km.PrevMatch.Keys()); diff != "" {
		t.Errorf("previous match keys (-want +got):\n%s", diff)
	}
}

func TestKeyMapFromConfigDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	km := KeyMapFromConfig(&cfg.Keys)

	// The defaults section mirrors DefaultKeyMap.
	if diff := cmp.Diff([]string{"tab"}, km.NextMatch.Keys()); diff != "" {
		t.Errorf("next match keys (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"shift+tab"}, km.PrevMatch.Keys()); diff != "" {
		t.Errorf("previous match keys (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"up", "ctrl+p"}, km.Up.Keys()); diff != "" {
		t.Errorf("up keys (-want +got):\n%s", diff)
	}
}
