package model

import "strings"

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) String() string { return string(c) }

func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelSMS || c == ChannelWhatsApp
}

// ParseChannel normalizes input. Returns (value, true) if valid;
// otherwise (the raw input, false).
func ParseChannel(s string) (Channel, bool) {
	ch := Channel(strings.ToLower(strings.TrimSpace(s)))
	return ch, ch.Valid()
}
