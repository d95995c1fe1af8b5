package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

func newMetaForTest(t *testing.T, baseURL string) *MetaWhatsApp {
	t.Helper()
	p, err := NewMetaWhatsApp(config.WhatsAppConfig{
		Driver:        DriverMeta,
		PhoneNumberID: "10987654321",
		AccessToken:   "EAAtoken",
		BaseURL:       baseURL,
	})
	if err != nil {
		t.Fatalf("NewMetaWhatsApp: %v", err)
	}
	return p
}

// captureServer records the last Cloud API request body and replies with one
// accepted message id.
func captureServer(t *testing.T, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/10987654321/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer EAAtoken" {
			t.Errorf("authorization = %q", got)
		}
		b, _ := io.ReadAll(r.Body)
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Errorf("bad request json: %v", err)
		}
		*captured = m

		w.Write([]byte(`{"messages":[{"id":"wamid.ABC"}]}`))
	}))
}

func TestMetaSendText(t *testing.T) {
	var body map[string]any
	srv := captureServer(t, &body)
	defer srv.Close()

	p := newMetaForTest(t, srv.URL)
	res := p.Send(context.Background(), model.OutgoingMessage{
		To:       "15550100001",
		WhatsApp: &model.WhatsAppContent{Kind: model.WhatsAppText, Text: "hello"},
	})

	if !res.Accepted || res.ProviderMessageID != "wamid.ABC" {
		t.Fatalf("res = %+v", res)
	}
	if body["messaging_product"] != "whatsapp" || body["type"] != "text" {
		t.Fatalf("body = %v", body)
	}
	text := body["text"].(map[string]any)
	if text["body"] != "hello" {
		t.Fatalf("text = %v", text)
	}
}

// A nil content pointer degrades to a free-text payload built from Body.
func TestMetaSendNilContentFallsBackToBody(t *testing.T) {
	var body map[string]any
	srv := captureServer(t, &body)
	defer srv.Close()

	p := newMetaForTest(t, srv.URL)
	res := p.Send(context.Background(), model.OutgoingMessage{To: "15550100001", Body: "plain"})

	if !res.Accepted {
		t.Fatalf("res = %+v", res)
	}
	if body["type"] != "text" {
		t.Fatalf("type = %v", body["type"])
	}
}

func TestMetaSendTemplate(t *testing.T) {
	var body map[string]any
	srv := captureServer(t, &body)
	defer srv.Close()

	p := newMetaForTest(t, srv.URL)
	res := p.Send(context.Background(), model.OutgoingMessage{
		To: "15550100001",
		WhatsApp: &model.WhatsAppContent{
			Kind: model.WhatsAppTemplate,
			Template: &model.WhatsAppTemplateDef{
				Name:      "order_update",
				Language:  "de",
				Variables: []string{"Anna", "3"},
			},
		},
	})
	if !res.Accepted {
		t.Fatalf("res = %+v", res)
	}

	if body["type"] != "template" {
		t.Fatalf("type = %v", body["type"])
	}
	tpl := body["template"].(map[string]any)
	if tpl["name"] != "order_update" {
		t.Fatalf("template = %v", tpl)
	}
	lang := tpl["language"].(map[string]any)
	if lang["code"] != "de" {
		t.Fatalf("language = %v", lang)
	}
	comps := tpl["components"].([]any)
	comp := comps[0].(map[string]any)
	if comp["type"] != "body" {
		t.Fatalf("component = %v", comp)
	}
	params := comp["parameters"].([]any)
	if len(params) != 2 {
		t.Fatalf("parameters = %v", params)
	}
	first := params[0].(map[string]any)
	if first["type"] != "text" || first["text"] != "Anna" {
		t.Fatalf("parameter = %v", first)
	}
}

func TestMetaSendMedia(t *testing.T) {
	var body map[string]any
	srv := captureServer(t, &body)
	defer srv.Close()

	p := newMetaForTest(t, srv.URL)
	res := p.Send(context.Background(), model.OutgoingMessage{
		To: "15550100001",
		WhatsApp: &model.WhatsAppContent{
			Kind:  model.WhatsAppMedia,
			Media: &model.WhatsAppMediaDef{Link: "https://cdn.example.com/pic.jpg", Caption: "caption"},
		},
	})
	if !res.Accepted {
		t.Fatalf("res = %+v", res)
	}

	if body["type"] != "image" {
		t.Fatalf("type = %v", body["type"])
	}
	img := body["image"].(map[string]any)
	if img["link"] != "https://cdn.example.com/pic.jpg" || img["caption"] != "caption" {
		t.Fatalf("image = %v", img)
	}
}

func TestMetaSendCatalogList(t *testing.T) {
	var body map[string]any
	srv := captureServer(t, &body)
	defer srv.Close()

	p := newMetaForTest(t, srv.URL)
	res := p.Send(context.Background(), model.OutgoingMessage{
		To: "15550100001",
		WhatsApp: &model.WhatsAppContent{
			Kind: model.WhatsAppCatalogList,
			Catalog: &model.WhatsAppCatalogDef{
				CatalogID: "cat-7",
				Header:    "Our cars",
				Sections: []model.WhatsAppCatalogSection{
					{Title: "Sedans", ProductIDs: []string{"p1", "p2"}},
				},
			},
		},
	})
	if !res.Accepted {
		t.Fatalf("res = %+v", res)
	}

	if body["type"] != "interactive" {
		t.Fatalf("type = %v", body["type"])
	}
	inter := body["interactive"].(map[string]any)
	if inter["type"] != "product_list" {
		t.Fatalf("interactive = %v", inter)
	}
	// empty body text gets the default
	if inter["body"].(map[string]any)["text"] != "Browse our products" {
		t.Fatalf("body text = %v", inter["body"])
	}
	action := inter["action"].(map[string]any)
	if action["catalog_id"] != "cat-7" {
		t.Fatalf("action = %v", action)
	}
	secs := action["sections"].([]any)
	items := secs[0].(map[string]any)["product_items"].([]any)
	if len(items) != 2 || items[0].(map[string]any)["product_retailer_id"] != "p1" {
		t.Fatalf("items = %v", items)
	}
}

func TestMetaSendEmptyTextFails(t *testing.T) {
	p := newMetaForTest(t, "http://127.0.0.1:0")
	res := p.Send(context.Background(), model.OutgoingMessage{
		To:       "15550100001",
		WhatsApp: &model.WhatsAppContent{Kind: model.WhatsAppText},
	})
	if res.Accepted || res.ErrorMessage != "empty text body" {
		t.Fatalf("res = %+v", res)
	}
}

func TestMetaSendVendorRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"(#131030) Recipient not in allowed list"}}`))
	}))
	defer srv.Close()

	p := newMetaForTest(t, srv.URL)
	res := p.Send(context.Background(), model.OutgoingMessage{
		To:       "15550100001",
		WhatsApp: &model.WhatsAppContent{Kind: model.WhatsAppText, Text: "hi"},
	})
	if res.Accepted || res.Meta["http_status"] != "400" {
		t.Fatalf("res = %+v", res)
	}
}
