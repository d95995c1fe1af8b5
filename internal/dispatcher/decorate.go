package dispatcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nexcrm/outreach-gateway/internal/model"
	"github.com/nexcrm/outreach-gateway/internal/token"
)

var hrefRe = regexp.MustCompile(`href="(https?://[^"]+)"`)

// Decorator instruments email bodies before dispatch: an invisible open
// pixel plus every outbound hyperlink rewritten through the click-tracking
// redirect. Each reference carries a token scoped to this exact
// (tenant, message) pair.
type Decorator struct {
	signer  *token.Signer
	baseURL string
}

func NewDecorator(signer *token.Signer, publicBaseURL string) *Decorator {
	return &Decorator{
		signer:  signer,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Decorate returns the instrumented body. Decoration is best-effort per link:
// a link whose token cannot be minted stays untouched rather than failing
// the whole send.
func (d *Decorator) Decorate(msg model.OutgoingMessage) string {
	body := d.rewriteLinks(msg)
	return d.appendPixel(body, msg)
}

func (d *Decorator) rewriteLinks(msg model.OutgoingMessage) string {
	return hrefRe.ReplaceAllStringFunc(msg.Body, func(match string) string {
		target := hrefRe.FindStringSubmatch(match)[1]
		tok, err := d.signer.MintTracking(token.TrackingPayload{
			TenantID:  msg.TenantID,
			MessageID: msg.MessageID,
			Action:    token.ActionClick,
			URL:       target,
		})
		if err != nil {
			return match
		}
		return fmt.Sprintf(`href="%s/track/click/%s"`, d.baseURL, tok)
	})
}

func (d *Decorator) appendPixel(body string, msg model.OutgoingMessage) string {
	tok, err := d.signer.MintTracking(token.TrackingPayload{
		TenantID:  msg.TenantID,
		MessageID: msg.MessageID,
		Action:    token.ActionOpen,
	})
	if err != nil {
		return body
	}

	pixel := fmt.Sprintf(
		`<img src="%s/track/open/%s" width="1" height="1" style="display:none" alt="">`,
		d.baseURL, tok,
	)

	if idx := strings.LastIndex(strings.ToLower(body), "</body>"); idx >= 0 {
		return body[:idx] + pixel + body[idx:]
	}
	return body + pixel
}
