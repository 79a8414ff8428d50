package imaging

import "testing"

func TestPreview(t *testing.T) {
	if got := Preview("short", 10); got != "short" {
		t.Fatalf("unexpected text: %s", got)
	}
	if got := Preview("truncate-me", 4); got != "t..." {
		t.Fatalf("unexpected truncation: %s", got)
	}
	if got := Preview("xyz", 2); got != "xy" {
		t.Fatalf("unexpected short truncation: %s", got)
	}
	if got := Preview("héllo wörld", 5); got != "hé..." {
		t.Fatalf("unexpected multibyte truncation: %s", got)
	}
}
