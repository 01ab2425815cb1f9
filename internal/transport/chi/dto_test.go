package chi

import "testing"

func TestAdventurousness(t *testing.T) {
	tests := []struct {
		raw  string
		want int // -1 = unset
	}{
		{"", -1},
		{"lots", -1},
		{"0", -1},
		{"NaN", -1},
		{"8", 8},
		{" 7.5 ", 7},
		{"6.9", 6},
		{"42", 10},
		{"-3", 0},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got := adventurousness(tc.raw)
			if tc.want < 0 {
				if got != nil {
					t.Errorf("got %d, want unset", *got)
				}
				return
			}
			if got == nil || *got != tc.want {
				t.Errorf("got %v, want %d", got, tc.want)
			}
		})
	}
}
