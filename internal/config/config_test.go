package config

import (
	"testing"
	"time"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http.addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Kafka.Topic != "outreach.dispatch" || cfg.Kafka.GroupID != "outreach-dispatcher" {
		t.Fatalf("kafka = %+v", cfg.Kafka)
	}
	if cfg.MySQL.ConnMaxLifetime != 30*time.Minute {
		t.Fatalf("mysql.conn_max_lifetime = %s", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Tracking.TrackingTTL != 1440*time.Hour || cfg.Tracking.PortalTTL != 4320*time.Hour {
		t.Fatalf("tracking = %+v", cfg.Tracking)
	}
	if cfg.Channels.Email.Driver != "mock" || cfg.Channels.SMS.Driver != "mock" || cfg.Channels.WhatsApp.Driver != "mock" {
		t.Fatalf("channels = %+v", cfg.Channels)
	}
	if cfg.Telephony.Driver != "null" {
		t.Fatalf("telephony.driver = %q", cfg.Telephony.Driver)
	}
	if cfg.Dispatcher.BatchWait != 300*time.Millisecond {
		t.Fatalf("dispatcher.batch_wait = %s", cfg.Dispatcher.BatchWait)
	}
}
