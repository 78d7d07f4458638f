package platforms

import (
	"strings"
	"testing"
)

func TestInstagramFallbackURLCarriesMediaID(t *testing.T) {
	u := instagramMediaURL("17895695668004550")
	if u == "" {
		t.Fatal("fallback url is empty")
	}
	if !strings.Contains(u, "17895695668004550") {
		t.Fatalf("fallback url missing media id: %s", u)
	}
	if !strings.HasPrefix(u, "https://") {
		t.Fatalf("fallback url is not absolute: %s", u)
	}
}
