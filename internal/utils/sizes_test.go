package utils_test

import (
	"testing"

	"github.com/KaramelBytes/edakit/internal/utils"
)

func TestMegaBytes(t *testing.T) {
	if got := utils.MegaBytes(2_500_000); got != 2.5 {
		t.Fatalf("MegaBytes = %v, want 2.5", got)
	}
}

func TestPercentDecrease(t *testing.T) {
	cases := []struct {
		name          string
		before, after int64
		want          float64
		ok            bool
	}{
		{"halved", 200, 100, 50, true},
		{"grew", 100, 150, -50, true},
		{"zero before", 0, 10, 0, false},
	}
	for _, c := range cases {
		got, ok := utils.PercentDecrease(c.before, c.after)
		if ok != c.ok || got != c.want {
			t.Errorf("%s: got (%v, %v), want (%v, %v)", c.name, got, ok, c.want, c.ok)
		}
	}
}
