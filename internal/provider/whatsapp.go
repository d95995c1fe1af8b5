package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

const metaDefaultBaseURL = "https://graph.facebook.com/v19.0"

// MetaWhatsApp delivers WhatsApp messages through the Cloud API. The request
// shape is selected by matching over the parsed content variant.
type MetaWhatsApp struct {
	phoneNumberID string
	accessToken   string
	baseURL       string
	client        *http.Client
	br            *vendorBreaker
}

var _ Provider = (*MetaWhatsApp)(nil)

func NewMetaWhatsApp(cfg config.WhatsAppConfig) (*MetaWhatsApp, error) {
	if strings.TrimSpace(cfg.PhoneNumberID) == "" || strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, model.NewConfigurationError("channels.whatsapp", "phone number id and access token are required")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = metaDefaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &MetaWhatsApp{
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		baseURL:       base,
		client:        &http.Client{Timeout: timeout},
		br:            newVendorBreaker(3, 15*time.Second),
	}, nil
}

func (p *MetaWhatsApp) Key() string { return DriverMeta }

// ---- Cloud API request/response shapes ----

type waRequest struct {
	MessagingProduct string         `json:"messaging_product"`
	To               string         `json:"to"`
	Type             string         `json:"type"`
	Text             *waText        `json:"text,omitempty"`
	Image            *waMedia       `json:"image,omitempty"`
	Template         *waTemplate    `json:"template,omitempty"`
	Interactive      *waInteractive `json:"interactive,omitempty"`
}

type waText struct {
	Body string `json:"body"`
}

type waMedia struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type waTemplate struct {
	Name       string        `json:"name"`
	Language   waLanguage    `json:"language"`
	Components []waComponent `json:"components,omitempty"`
}

type waLanguage struct {
	Code string `json:"code"`
}

type waComponent struct {
	Type       string        `json:"type"`
	Parameters []waParameter `json:"parameters"`
}

type waParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type waInteractive struct {
	Type   string    `json:"type"`
	Header *waHeader `json:"header,omitempty"`
	Body   waBody    `json:"body"`
	Action waAction  `json:"action"`
}

type waHeader struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type waBody struct {
	Text string `json:"text"`
}

type waAction struct {
	CatalogID string      `json:"catalog_id"`
	Sections  []waSection `json:"sections"`
}

type waSection struct {
	Title        string          `json:"title,omitempty"`
	ProductItems []waProductItem `json:"product_items"`
}

type waProductItem struct {
	ProductRetailerID string `json:"product_retailer_id"`
}

type waResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (p *MetaWhatsApp) Send(ctx context.Context, msg model.OutgoingMessage) model.SendResult {
	if strings.TrimSpace(msg.To) == "" {
		return model.SendFailed(DriverMeta, "missing recipient")
	}

	content := msg.WhatsApp
	if content == nil {
		// no structured meta at all: fall back to a free-text payload
		content = &model.WhatsAppContent{Kind: model.WhatsAppText, Text: msg.Body}
	}

	req, err := buildWARequest(msg.To, content)
	if err != nil {
		return model.SendFailed(DriverMeta, err.Error())
	}

	if !p.br.TryAcquire() {
		return model.SendFailed(DriverMeta, "provider circuit open")
	}

	return p.post(ctx, req)
}

// buildWARequest selects the vendor request shape for one content variant.
func buildWARequest(to string, c *model.WhatsAppContent) (waRequest, error) {
	req := waRequest{MessagingProduct: "whatsapp", To: to}

	switch c.Kind {
	case model.WhatsAppTemplate:
		if c.Template == nil || c.Template.Name == "" {
			return waRequest{}, fmt.Errorf("template content without a template definition")
		}
		req.Type = "template"
		tpl := &waTemplate{
			Name:     c.Template.Name,
			Language: waLanguage{Code: c.Template.Language},
		}
		if len(c.Template.Variables) > 0 {
			params := make([]waParameter, 0, len(c.Template.Variables))
			for _, v := range c.Template.Variables {
				params = append(params, waParameter{Type: "text", Text: v})
			}
			tpl.Components = []waComponent{{Type: "body", Parameters: params}}
		}
		req.Template = tpl

	case model.WhatsAppMedia:
		if c.Media == nil || c.Media.Link == "" {
			return waRequest{}, fmt.Errorf("media content without a link")
		}
		req.Type = "image"
		req.Image = &waMedia{Link: c.Media.Link, Caption: c.Media.Caption}

	case model.WhatsAppCatalogList:
		if c.Catalog == nil || c.Catalog.CatalogID == "" || len(c.Catalog.Sections) == 0 {
			return waRequest{}, fmt.Errorf("catalog content without catalog id or sections")
		}
		req.Type = "interactive"
		inter := &waInteractive{
			Type:   "product_list",
			Body:   waBody{Text: c.Catalog.BodyText},
			Action: waAction{CatalogID: c.Catalog.CatalogID},
		}
		if inter.Body.Text == "" {
			inter.Body.Text = "Browse our products"
		}
		if c.Catalog.Header != "" {
			inter.Header = &waHeader{Type: "text", Text: c.Catalog.Header}
		}
		for _, sec := range c.Catalog.Sections {
			ws := waSection{Title: sec.Title}
			for _, id := range sec.ProductIDs {
				ws.ProductItems = append(ws.ProductItems, waProductItem{ProductRetailerID: id})
			}
			inter.Action.Sections = append(inter.Action.Sections, ws)
		}
		req.Interactive = inter

	default: // free text
		if strings.TrimSpace(c.Text) == "" {
			return waRequest{}, fmt.Errorf("empty text body")
		}
		req.Type = "text"
		req.Text = &waText{Body: c.Text}
	}

	return req, nil
}

func (p *MetaWhatsApp) post(ctx context.Context, payload waRequest) model.SendResult {
	b, err := json.Marshal(payload)
	if err != nil {
		return model.SendFailed(DriverMeta, err.Error())
	}

	endpoint := fmt.Sprintf("%s/%s/messages", p.baseURL, p.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		p.br.OnFailure()
		return model.SendFailed(DriverMeta, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.accessToken)

	res, err := p.client.Do(req)
	if err != nil {
		p.br.OnFailure()
		return model.SendFailed(DriverMeta, err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		p.br.OnFailure()
		return model.SendFailed(DriverMeta, "vendor rejected the message").
			WithMeta("http_status", strconv.Itoa(res.StatusCode))
	}
	p.br.OnSuccess()

	var body waResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || len(body.Messages) == 0 {
		return model.SendOK(DriverMeta, "").WithMeta("http_status", strconv.Itoa(res.StatusCode))
	}

	return model.SendOK(DriverMeta, body.Messages[0].ID).
		WithMeta("http_status", strconv.Itoa(res.StatusCode))
}
