package shared

import "testing"

func TestFoldSearch(t *testing.T) {
	cases := map[string]string{
		"Électricité Générale": "electricite generale",
		"Chauffe-eau 200L":     "chauffe-eau 200l",
		"Dupont & Fils":        "dupont & fils",
		"":                     "",
	}
	for in, want := range cases {
		if got := FoldSearch(in); got != want {
			t.Fatalf("FoldSearch(%q) = %q, want %q", in, got, want)
		}
	}
}
