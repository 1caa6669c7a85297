package models

import "testing"

func TestParticipantInfoRoundTrip(t *testing.T) {
	info := ParticipantInfo{}
	info.Set(42, Participant{DisplayName: "Ada", AvatarURL: "https://cdn/ada.jpg"})

	got, ok := info.Get(42)
	if !ok {
		t.Fatal("Get(42) missing after Set")
	}
	if got.DisplayName != "Ada" {
		t.Errorf("DisplayName = %q, want Ada", got.DisplayName)
	}
	if _, ok := info.Get(7); ok {
		t.Error("Get(7) = ok, want missing")
	}
}

func TestParticipantInfoScanValue(t *testing.T) {
	info := ParticipantInfo{}
	info.Set(1, Participant{DisplayName: "Ada"})

	raw, err := info.Value()
	if err != nil {
		t.Fatal(err)
	}

	var scanned ParticipantInfo
	if err := scanned.Scan(raw); err != nil {
		t.Fatal(err)
	}
	got, ok := scanned.Get(1)
	if !ok || got.DisplayName != "Ada" {
		t.Errorf("scanned Get(1) = %+v, ok=%v, want Ada", got, ok)
	}

	var fromNil ParticipantInfo
	if err := fromNil.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if fromNil == nil {
		t.Error("Scan(nil) left the map nil")
	}
}

func TestConversationPairHelpers(t *testing.T) {
	c := &Conversation{ParticipantOneID: 3, ParticipantTwoID: 9}

	if !c.HasParticipant(3) || !c.HasParticipant(9) {
		t.Error("HasParticipant missed a member")
	}
	if c.HasParticipant(4) {
		t.Error("HasParticipant(4) = true, want false")
	}

	if got := c.OtherParticipant(3); got != 9 {
		t.Errorf("OtherParticipant(3) = %d, want 9", got)
	}
	if got := c.OtherParticipant(9); got != 3 {
		t.Errorf("OtherParticipant(9) = %d, want 3", got)
	}

	if !c.IsPair(3, 9) || !c.IsPair(9, 3) {
		t.Error("IsPair should match either order")
	}
	if c.IsPair(3, 4) {
		t.Error("IsPair(3, 4) = true, want false")
	}
}
