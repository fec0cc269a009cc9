package domain

import "testing"

func TestOutputGateAllow(t *testing.T) {
	gate := OutputGate{MinStatus: GrayWhite}
	if gate.Allow(GrayMid) {
		t.Fatal("GrayMid should not clear a GrayWhite gate")
	}
	if !gate.Allow(GrayWhite) {
		t.Fatal("GrayWhite should clear a GrayWhite gate")
	}
	if !gate.Allow(White) {
		t.Fatal("White should clear a GrayWhite gate")
	}
}
