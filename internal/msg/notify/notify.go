package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"admissions-back/internal/model"
	"admissions-back/pkg/mailer"
)

const prospectCreatedTpl = `
<h2>New prospect registered</h2>
<p><b>{{.DisplayName}}</b> ({{.Email}}) just entered the pipeline.</p>
<p>Source: {{.Source}}</p>
`

// Notifier mails the admissions team about new prospects. Registered as a
// best-effort consumer: a down SMTP relay must never block projection.
type Notifier struct {
	l      *zap.Logger
	mail   mailer.Mailer
	notify []string
}

func NewNotifier(l *zap.Logger, mail mailer.Mailer, notify []string) *Notifier {
	return &Notifier{
		l:      l,
		mail:   mail,
		notify: notify,
	}
}

func (n *Notifier) Name() string {
	return "notifier"
}

func (n *Notifier) Handle(ctx context.Context, envelope *model.EventEnvelope) error {
	if envelope.EventType != model.EventProspectCreated {
		return nil
	}

	var prospect model.Prospect
	if err := json.Unmarshal(envelope.Data, &prospect); err != nil {
		return fmt.Errorf("failed to unmarshal prospect: %w", err)
	}

	data := struct {
		DisplayName string
		Email       string
		Source      string
	}{
		DisplayName: prospect.FirstName + " " + prospect.LastName,
		Email:       prospect.Email,
		Source:      prospect.Source,
	}

	for _, to := range n.notify {
		if err := n.mail.SendHTML(to, "New prospect: "+data.DisplayName, prospectCreatedTpl, data); err != nil {
			return fmt.Errorf("failed to send notification to %s: %w", to, err)
		}
	}

	n.l.Info("Prospect notification sent",
		zap.String("event_id", envelope.EventID.String()),
		zap.Int("recipients", len(n.notify)),
	)

	return nil
}
