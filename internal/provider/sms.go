package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

const twilioDefaultBaseURL = "https://api.twilio.com"

// TwilioSMS delivers SMS through the Twilio Messages REST endpoint.
type TwilioSMS struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
	br         *vendorBreaker
}

var _ Provider = (*TwilioSMS)(nil)

func NewTwilioSMS(cfg config.SMSConfig) (*TwilioSMS, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, model.NewConfigurationError("channels.sms", "twilio credentials are required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, model.NewConfigurationError("channels.sms", "sender number is required")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = twilioDefaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &TwilioSMS{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		baseURL:    base,
		client:     &http.Client{Timeout: timeout},
		br:         newVendorBreaker(3, 15*time.Second),
	}, nil
}

func (p *TwilioSMS) Key() string { return DriverTwilio }

func (p *TwilioSMS) Send(ctx context.Context, msg model.OutgoingMessage) model.SendResult {
	if strings.TrimSpace(msg.To) == "" {
		return model.SendFailed(DriverTwilio, "missing recipient")
	}
	if strings.TrimSpace(msg.Body) == "" {
		return model.SendFailed(DriverTwilio, "empty message body")
	}
	if !p.br.TryAcquire() {
		return model.SendFailed(DriverTwilio, "provider circuit open")
	}

	from := msg.From
	if from == "" {
		from = p.from
	}

	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", from)
	form.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", p.baseURL, p.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		p.br.OnFailure()
		return model.SendFailed(DriverTwilio, err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.accountSID, p.authToken)

	res, err := p.client.Do(req)
	if err != nil {
		p.br.OnFailure()
		return model.SendFailed(DriverTwilio, err.Error())
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		p.br.OnFailure()
		return model.SendFailed(DriverTwilio, "vendor rejected the message").
			WithMeta("http_status", strconv.Itoa(res.StatusCode))
	}
	p.br.OnSuccess()

	var body struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		// accepted by the vendor; a broken response body is diagnostic only
		return model.SendOK(DriverTwilio, "").WithMeta("decode_error", err.Error())
	}

	return model.SendOK(DriverTwilio, body.SID).
		WithMeta("http_status", strconv.Itoa(res.StatusCode))
}
