package theme

import (
	"testing"

	"github.com/theirongolddev/mfocus/internal/model"
)

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("tokyo-night"); got.Name != "tokyo-night" {
		t.Fatalf("ByName = %s", got.Name)
	}
	if got := ByName("nope"); got.Name != FlexokiDark.Name {
		t.Fatalf("fallback = %s", got.Name)
	}
}

func TestNextCycles(t *testing.T) {
	name := All[0].Name
	for i := 0; i < len(All); i++ {
		name = Next(name)
	}
	if name != All[0].Name {
		t.Fatalf("cycle ended at %s", name)
	}
	if Next("unknown") != All[0].Name {
		t.Fatal("unknown theme should restart the cycle")
	}
}

func TestCategoryColors(t *testing.T) {
	for _, th := range All {
		if th.Category(model.CategoryMeeting) == th.Category(model.CategoryDistraction) {
			t.Errorf("%s: meeting and distraction share a color", th.Name)
		}
		if th.Category("bogus") != th.Other {
			t.Errorf("%s: unknown category not mapped to Other", th.Name)
		}
	}
}
