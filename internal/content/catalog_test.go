package content

import "testing"

func TestFindRegion(t *testing.T) {
	for _, value := range []string{"TR", "tr", "Турция", " турция "} {
		region, ok := FindRegion(value)
		if !ok || region.Code != "TR" {
			t.Errorf("FindRegion(%q) = %+v, %v", value, region, ok)
		}
	}

	if _, ok := FindRegion("Atlantis"); ok {
		t.Error("unknown region should not be found")
	}
}
