package model

import "encoding/json"

// NewOutgoing builds the immutable provider snapshot from a persisted
// message row. For WhatsApp the loose meta JSON is decoded into its tagged
// content variant here, once, so providers only match over the variant.
func NewOutgoing(m *Message) OutgoingMessage {
	out := OutgoingMessage{
		MessageID: m.ID,
		TenantID:  m.TenantID,
		Channel:   m.Channel,
		To:        m.ToAddr,
		From:      m.FromAddr.String,
		Subject:   m.Subject.String,
		Body:      m.Body.String,
		Provider:  m.Provider.String,
	}

	if m.Channel == ChannelWhatsApp {
		var meta map[string]any
		if m.Meta.Valid && m.Meta.String != "" {
			_ = json.Unmarshal([]byte(m.Meta.String), &meta)
		}
		out.WhatsApp = ParseWhatsAppContent(meta, out.Body)
	}

	return out
}
