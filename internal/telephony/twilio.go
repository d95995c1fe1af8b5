package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nexcrm/outreach-gateway/internal/config"
	"github.com/nexcrm/outreach-gateway/internal/model"
)

const twilioVoiceDefaultBaseURL = "https://api.twilio.com"

// TwilioVoice places calls through the Twilio Calls REST endpoint and issues
// short-lived access tokens for the browser/mobile SDK.
type TwilioVoice struct {
	accountSID        string
	authToken         string
	apiKeySID         string
	apiKeySecret      string
	from              string
	voiceURL          string
	statusCallbackURL string
	baseURL           string
	client            *http.Client
	now               func() time.Time
}

var _ Provider = (*TwilioVoice)(nil)

func NewTwilioVoice(cfg config.TelephonyConfig) (*TwilioVoice, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, model.NewConfigurationError("telephony", "twilio credentials are required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, model.NewConfigurationError("telephony", "caller number is required")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = twilioVoiceDefaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &TwilioVoice{
		accountSID:        cfg.AccountSID,
		authToken:         cfg.AuthToken,
		apiKeySID:         cfg.APIKeySID,
		apiKeySecret:      cfg.APIKeySecret,
		from:              cfg.From,
		voiceURL:          cfg.VoiceURL,
		statusCallbackURL: cfg.StatusCallbackURL,
		baseURL:           base,
		client:            &http.Client{Timeout: timeout},
		now:               time.Now,
	}, nil
}

func (p *TwilioVoice) Key() string { return DriverTwilio }

// StartCall places the call and returns the vendor call id. Errors propagate
// to the caller: this is an interactive action, not a queued send.
func (p *TwilioVoice) StartCall(ctx context.Context, req StartCallRequest) (StartCallResult, error) {
	if strings.TrimSpace(req.To) == "" {
		return StartCallResult{}, fmt.Errorf("start call: missing destination number")
	}

	from := req.From
	if from == "" {
		from = p.from
	}

	form := url.Values{}
	form.Set("From", from)
	form.Set("To", req.To)
	form.Set("Url", p.voiceURL)
	if p.statusCallbackURL != "" {
		form.Set("StatusCallback", p.statusCallbackURL)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", p.baseURL, p.accountSID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return StartCallResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(p.accountSID, p.authToken)

	res, err := p.client.Do(httpReq)
	if err != nil {
		return StartCallResult{}, fmt.Errorf("start call: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return StartCallResult{}, fmt.Errorf("start call: vendor status %d", res.StatusCode)
	}

	var body struct {
		SID       string `json:"sid"`
		Status    string `json:"status"`
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return StartCallResult{}, fmt.Errorf("start call: decode response: %w", err)
	}

	return StartCallResult{
		ProviderCallID: body.SID,
		Status:         CanonicalStatus(body.Status),
		Direction:      body.Direction,
	}, nil
}

// IssueAccessToken mints a compact signed credential for the client voice SDK
// with iss/sub/exp and a voice grant for the given identity.
func (p *TwilioVoice) IssueAccessToken(identity string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(p.apiKeySID) == "" || strings.TrimSpace(p.apiKeySecret) == "" {
		return "", model.NewConfigurationError("telephony", "api key sid/secret required for access tokens")
	}
	if strings.TrimSpace(identity) == "" {
		return "", fmt.Errorf("issue access token: identity is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	now := p.now()
	claims := jwt.MapClaims{
		"iss": p.apiKeySID,
		"sub": p.accountSID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"grants": map[string]any{
			"identity": identity,
			"voice": map[string]any{
				"incoming": map[string]any{"allow": true},
			},
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["cty"] = "twilio-fpa;v=1"
	return tok.SignedString([]byte(p.apiKeySecret))
}

func (p *TwilioVoice) MapWebhookPayload(form url.Values) model.CallEvent {
	return mapVoiceWebhook(form)
}
