package cache

import "testing"

func TestComposeKey(t *testing.T) {
	got := composeKey(3, "notes", "topicA:intro")
	want := "3:notes:topicA:intro"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"*:topicA*", "1:notes:topicA-intro", true},
		{"*:topicA*", "1:notes:topicB-intro", false},
		{"1:notes:*", "1:notes:anything", true},
		{"1:notes:*", "2:notes:anything", false},
		{"*:notes:q?", "1:notes:q1", true},
		{"*:notes:q?", "1:notes:q12", false},
		{"[", "anything", false}, // malformed pattern matches nothing
	}

	for _, tc := range cases {
		if got := matchGlob(tc.pattern, tc.key); got != tc.want {
			t.Errorf("matchGlob(%q, %q) = %v, want %v", tc.pattern, tc.key, got, tc.want)
		}
	}
}
