package reddit

import "testing"

func TestFullname(t *testing.T) {
	cases := map[string]string{
		"t1_abc":              "t1_abc",
		"t3_xyz":              "t3_xyz",
		"1167iaj":             "t3_1167iaj",
		"https://redd.it/p1/": "t3_p1",
		"https://reddit.com/r/diffusedgallery/comments/1167iaj/submit_here/j9abc12/": "t1_j9abc12",
		"https://www.reddit.com/r/diffusedgallery/comments/1167iaj/submit_here/":     "t3_1167iaj",
	}
	for input, want := range cases {
		got, err := fullname(input)
		if err != nil {
			t.Fatalf("fullname(%q) error: %v", input, err)
		}
		if got != want {
			t.Fatalf("fullname(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFullnameRejectsUnknownShapes(t *testing.T) {
	for _, input := range []string{"", "https://example.com/a/b"} {
		if _, err := fullname(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestPostIDRejectsComments(t *testing.T) {
	if _, err := postID("t1_abc"); err == nil {
		t.Fatal("expected comment target to be rejected")
	}
	id, err := postID("https://redd.it/p9")
	if err != nil || id != "p9" {
		t.Fatalf("postID = %q, %v", id, err)
	}
}
