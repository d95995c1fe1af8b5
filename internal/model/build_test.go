package model

import (
	"database/sql"
	"testing"
)

func TestNewOutgoingEmail(t *testing.T) {
	m := &Message{
		ID:       "m1",
		TenantID: 3,
		Channel:  ChannelEmail,
		ToAddr:   "jane@example.test",
		Subject:  sql.NullString{String: "Hello", Valid: true},
		Body:     sql.NullString{String: "<p>hi</p>", Valid: true},
	}
	out := NewOutgoing(m)
	if out.MessageID != "m1" || out.TenantID != 3 || out.Channel != ChannelEmail {
		t.Fatalf("out = %+v", out)
	}
	if out.Subject != "Hello" || out.Body != "<p>hi</p>" {
		t.Fatalf("out = %+v", out)
	}
	if out.WhatsApp != nil {
		t.Fatal("email snapshot should carry no whatsapp content")
	}
}

// The whatsapp meta JSON is decoded exactly once, when the snapshot is built.
func TestNewOutgoingWhatsAppMeta(t *testing.T) {
	m := &Message{
		ID:       "m2",
		TenantID: 3,
		Channel:  ChannelWhatsApp,
		ToAddr:   "15550100001",
		Body:     sql.NullString{String: "fallback text", Valid: true},
		Meta:     sql.NullString{String: `{"template_name":"welcome","variables":["Jane"]}`, Valid: true},
	}
	out := NewOutgoing(m)
	if out.WhatsApp == nil || out.WhatsApp.Kind != WhatsAppTemplate {
		t.Fatalf("whatsapp = %+v", out.WhatsApp)
	}
	if out.WhatsApp.Template.Name != "welcome" {
		t.Fatalf("template = %+v", out.WhatsApp.Template)
	}
}

// Broken meta JSON degrades to free text with the body, never an error.
func TestNewOutgoingWhatsAppBadMeta(t *testing.T) {
	m := &Message{
		ID:      "m3",
		Channel: ChannelWhatsApp,
		Body:    sql.NullString{String: "fallback text", Valid: true},
		Meta:    sql.NullString{String: `{not json`, Valid: true},
	}
	out := NewOutgoing(m)
	if out.WhatsApp == nil || out.WhatsApp.Kind != WhatsAppText || out.WhatsApp.Text != "fallback text" {
		t.Fatalf("whatsapp = %+v", out.WhatsApp)
	}
}
