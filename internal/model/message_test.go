package model

import "testing"

func TestParseChannel(t *testing.T) {
	for raw, want := range map[string]Channel{
		"email":    ChannelEmail,
		" SMS ":    ChannelSMS,
		"WhatsApp": ChannelWhatsApp,
	} {
		ch, ok := ParseChannel(raw)
		if !ok || ch != want {
			t.Errorf("ParseChannel(%q) = %q, %v", raw, ch, ok)
		}
	}

	if _, ok := ParseChannel("fax"); ok {
		t.Error("ParseChannel accepted fax")
	}
	if _, ok := ParseChannel(""); ok {
		t.Error("ParseChannel accepted empty input")
	}
}

// Engagement only ever moves forward through the rank order.
func TestMessageStatusRank(t *testing.T) {
	order := []MessageStatus{StatusQueued, StatusFailed, StatusSent, StatusOpened, StatusClicked}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Fatalf("%s should outrank %s", order[i], order[i-1])
		}
	}
	if MessageStatus("bogus").Rank() != 0 {
		t.Fatal("unknown status should rank lowest")
	}
}

func TestCallStatusTerminal(t *testing.T) {
	for st, want := range map[CallStatus]bool{
		CallQueued:     false,
		CallRinging:    false,
		CallInProgress: false,
		CallCompleted:  true,
		CallFailed:     true,
	} {
		if st.Terminal() != want {
			t.Errorf("%s.Terminal() = %v, want %v", st, st.Terminal(), want)
		}
	}
}
