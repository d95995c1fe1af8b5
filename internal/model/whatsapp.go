package model

import (
	"fmt"
	"strings"
)

// WhatsAppKind tags the shape of an outbound WhatsApp payload.
type WhatsAppKind string

const (
	WhatsAppText        WhatsAppKind = "text"
	WhatsAppTemplate    WhatsAppKind = "template"
	WhatsAppMedia       WhatsAppKind = "media"
	WhatsAppCatalogList WhatsAppKind = "catalog_list"
)

// WhatsAppContent is a tagged union; exactly the fields of the tagged variant
// are populated.
type WhatsAppContent struct {
	Kind     WhatsAppKind         `json:"kind"`
	Text     string               `json:"text,omitempty"`
	Template *WhatsAppTemplateDef `json:"template,omitempty"`
	Media    *WhatsAppMediaDef    `json:"media,omitempty"`
	Catalog  *WhatsAppCatalogDef  `json:"catalog,omitempty"`
}

type WhatsAppTemplateDef struct {
	Name      string   `json:"name"`
	Language  string   `json:"language"`
	Variables []string `json:"variables,omitempty"` // positional text parameters
}

type WhatsAppMediaDef struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type WhatsAppCatalogDef struct {
	CatalogID string                   `json:"catalog_id"`
	Header    string                   `json:"header,omitempty"`
	BodyText  string                   `json:"body_text,omitempty"`
	Sections  []WhatsAppCatalogSection `json:"sections"`
}

type WhatsAppCatalogSection struct {
	Title      string   `json:"title,omitempty"`
	ProductIDs []string `json:"product_ids"`
}

// ParseWhatsAppContent decodes the loose per-message meta payload written by
// the CRM into one concrete variant. Selection rules:
//   - message_type=media with a media_url    -> media
//   - message_type=catalog with a catalog_id -> catalog list
//   - a template name present                -> template
//   - otherwise                              -> free text (fallback body)
//
// Template variables of unsupported types are dropped silently; a bad
// variable must not fail the whole send.
func ParseWhatsAppContent(meta map[string]any, fallbackBody string) *WhatsAppContent {
	if meta == nil {
		meta = map[string]any{}
	}

	switch metaString(meta, "message_type") {
	case "media":
		if link := metaString(meta, "media_url"); link != "" {
			return &WhatsAppContent{
				Kind: WhatsAppMedia,
				Media: &WhatsAppMediaDef{
					Link:    link,
					Caption: metaString(meta, "caption"),
				},
			}
		}
	case "catalog":
		if id := metaString(meta, "catalog_id"); id != "" {
			return &WhatsAppContent{
				Kind: WhatsAppCatalogList,
				Catalog: &WhatsAppCatalogDef{
					CatalogID: id,
					Header:    metaString(meta, "header"),
					BodyText:  metaString(meta, "body"),
					Sections:  parseCatalogSections(meta["sections"]),
				},
			}
		}
	}

	if name := metaString(meta, "template_name"); name != "" {
		lang := metaString(meta, "language")
		if lang == "" {
			lang = "en"
		}
		return &WhatsAppContent{
			Kind: WhatsAppTemplate,
			Template: &WhatsAppTemplateDef{
				Name:      name,
				Language:  lang,
				Variables: parseTemplateVariables(meta["variables"]),
			},
		}
	}

	text := metaString(meta, "text")
	if text == "" {
		text = fallbackBody
	}
	return &WhatsAppContent{Kind: WhatsAppText, Text: text}
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// parseTemplateVariables keeps scalar values only; maps, slices and other
// structured values are skipped rather than failing the send.
func parseTemplateVariables(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case float64:
			out = append(out, trimFloat(t))
		case int:
			out = append(out, fmt.Sprintf("%d", t))
		case int64:
			out = append(out, fmt.Sprintf("%d", t))
		case bool:
			out = append(out, fmt.Sprintf("%t", t))
		}
	}
	return out
}

func parseCatalogSections(raw any) []WhatsAppCatalogSection {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]WhatsAppCatalogSection, 0, len(list))
	for _, v := range list {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		sec := WhatsAppCatalogSection{Title: metaString(m, "title")}
		if ids, ok := m["product_ids"].([]any); ok {
			for _, id := range ids {
				if s, ok := id.(string); ok && s != "" {
					sec.ProductIDs = append(sec.ProductIDs, s)
				}
			}
		}
		if len(sec.ProductIDs) > 0 {
			out = append(out, sec)
		}
	}
	return out
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
