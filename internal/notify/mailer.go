package notify

import (
	"context"
	"fmt"
	"time"

	"pharmacy/m/domain"
)

// Mailer turns stock state into alert mails addressed to the pharmacy.
type Mailer struct {
	sender Sender
	from   string
	to     []string
	now    func() time.Time
}

func NewMailer(sender Sender, from string, to ...string) *Mailer {
	return &Mailer{sender: sender, from: from, to: to, now: time.Now}
}

func (m *Mailer) message(subject, html string) Message {
	return Message{From: m.from, To: m.to, Subject: subject, HTML: html}
}

func (m *Mailer) LowStockMessage(levels []domain.StockLevel) (Message, error) {
	html, err := render(lowStockTmpl, lowStockView{Levels: levels, Generated: generatedAt(m.now())})
	if err != nil {
		return Message{}, err
	}
	return m.message(fmt.Sprintf("Low Stock Alert: %d medicine(s) need reordering", len(levels)), html), nil
}

func (m *Mailer) ExpiryMessage(expired, nearExpiry []domain.ExpiringMedicine) (Message, error) {
	html, err := render(expiryTmpl, expiryView{
		Expired:    expired,
		NearExpiry: nearExpiry,
		Generated:  generatedAt(m.now()),
	})
	if err != nil {
		return Message{}, err
	}
	subject := fmt.Sprintf("Expiry Alert: %d expired, %d expiring soon", len(expired), len(nearExpiry))
	return m.message(subject, html), nil
}

// SendTest delivers a test mail synchronously and reports the relay's answer.
func (m *Mailer) SendTest(ctx context.Context) error {
	html, err := render(testTmpl, struct{ Generated string }{generatedAt(m.now())})
	if err != nil {
		return err
	}
	return m.Send(ctx, m.message("Pharmacy alert test", html))
}

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("%w: no alert recipient configured", domain.ErrValidation)
	}
	return m.sender.Send(ctx, msg)
}
