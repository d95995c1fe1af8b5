package telephony

import (
	"context"
	"net/url"
	"time"

	"github.com/nexcrm/outreach-gateway/internal/model"
	"github.com/nexcrm/outreach-gateway/internal/util"
)

// Null is the manual-dial provider used when telephony is disabled. It never
// performs network I/O; the UI degrades to "click to dial" via the tel: deep
// link without special-casing telephony-off anywhere else.
type Null struct{}

var _ Provider = (*Null)(nil)

func NewNull() *Null { return &Null{} }

func (n *Null) Key() string { return DriverNull }

func (n *Null) StartCall(_ context.Context, req StartCallRequest) (StartCallResult, error) {
	phone := util.NormalizePhone(req.To)
	if phone == "" || phone == "+" {
		return StartCallResult{
			ProviderCallID: "manual-" + util.New(),
			Status:         model.CallFailed,
			Direction:      "outbound",
		}, nil
	}

	return StartCallResult{
		ProviderCallID: "manual-" + util.New(),
		Status:         model.CallQueued,
		Direction:      "outbound",
		DeepLink:       "tel:" + phone,
	}, nil
}

func (n *Null) IssueAccessToken(string, time.Duration) (string, error) {
	return "", ErrDisabled
}

func (n *Null) MapWebhookPayload(form url.Values) model.CallEvent {
	return mapVoiceWebhook(form)
}
