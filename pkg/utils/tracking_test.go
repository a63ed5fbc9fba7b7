package utils

import (
	"regexp"
	"testing"
)

func TestGenerateTrackingIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ZAP-\d{8}-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateTrackingID()
		if !pattern.MatchString(id) {
			t.Fatalf("tracking id %q does not match expected format", id)
		}
		seen[id] = true
	}
	if len(seen) < 90 {
		t.Fatalf("expected mostly unique ids, got %d unique out of 100", len(seen))
	}
}
