package assessment

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{100, "A+"},
		{95, "A+"},
		{94.9, "A"},
		{90, "A"},
		{89.999, "B+"},
		{85, "B+"},
		{80, "B"},
		{75, "C+"},
		{70, "C"},
		{69.5, "D"},
		{60, "D"},
		{59.9, "E"},
		{0, "E"},
	}
	for _, c := range cases {
		if got := Classify(c.score); got != c.want {
			t.Fatalf("Classify(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}
