package meaning

import "testing"

func TestSplitFragment(t *testing.T) {
	cases := []struct {
		in          string
		tag, payload string
	}{
		{"status\tready", "status", "ready"},
		{"status ready", "status", "ready"},
		{"justatag", "justatag", ""},
	}
	for _, c := range cases {
		tag, payload := SplitFragment(c.in)
		if tag != c.tag || payload != c.payload {
			t.Fatalf("SplitFragment(%q) = (%q, %q), want (%q, %q)", c.in, tag, payload, c.tag, c.payload)
		}
	}
}

func TestVerifyFragmentHit(t *testing.T) {
	db := NewDB(map[string]string{"status": "ready"})
	hit, ok := VerifyFragment(db, "status\tsystem is ready now")
	if !ok {
		t.Fatal("expected a fast-path hit")
	}
	if hit.Tag != "status" || hit.Mode != Contains {
		t.Fatalf("unexpected hit: %+v", hit)
	}
}

func TestVerifyFragmentMissOnMismatch(t *testing.T) {
	db := NewDB(map[string]string{"status": "ready"})
	if _, ok := VerifyFragment(db, "status\tnope"); ok {
		t.Fatal("expected no hit on payload mismatch")
	}
}

func TestVerifyFragmentMissOnUnmappedTag(t *testing.T) {
	db := NewDB(nil)
	if _, ok := VerifyFragment(db, "unmapped\tpayload"); ok {
		t.Fatal("expected no hit for an unmapped tag")
	}
}
