package notifier

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"StockSentry/internal/model"
	"StockSentry/internal/store"
)

// Notifier formats and dispatches the aggregated alerts, then records the
// send in the email log.
type Notifier struct {
	Store               store.NotifyStore
	Sender              Sender
	From                string
	SubjectPrefix       string
	WeeklySubjectPrefix string
	Location            *time.Location
}

// NewNotifier creates a Notifier.
func NewNotifier(st store.NotifyStore, sender Sender, from, subjectPrefix, weeklySubjectPrefix string, loc *time.Location) *Notifier {
	return &Notifier{
		Store:               st,
		Sender:              sender,
		From:                from,
		SubjectPrefix:       subjectPrefix,
		WeeklySubjectPrefix: weeklySubjectPrefix,
		Location:            loc,
	}
}

// SendDigest mails the aggregated alerts to the resolved recipient list.
// No alerts means no email. On confirmed dispatch one EmailLog row is
// written; a failed dispatch writes nothing and the error is surfaced for
// the scheduler's next fixed slot to retry.
func (n *Notifier) SendDigest(now time.Time, alerts []model.AggregatedAlert) error {
	if len(alerts) == 0 {
		log.Info().Msg("no signals to report, skipping email")
		return nil
	}

	records, err := n.Store.Recipients()
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}
	recipients := ResolveRecipients(records)
	if len(recipients) == 0 {
		log.Warn().Msg("no active recipients configured, skipping email")
		return nil
	}

	subject := n.SubjectPrefix + now.In(n.Location).Format("2006-01-02")
	textBody := FormatText(alerts)
	htmlBody := FormatHTML(alerts)

	if err := n.Sender.Send(n.From, recipients, subject, textBody, htmlBody); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	log.Info().
		Int("rows", len(alerts)).
		Int("recipients", len(recipients)).
		Str("subject", subject).
		Msg("digest email sent")

	if err := n.Store.LogEmail(&model.EmailLog{
		SentAt:     now.UTC(),
		Subject:    subject,
		Recipients: recipients,
		RowCount:   len(alerts),
	}); err != nil {
		return fmt.Errorf("log email send: %w", err)
	}
	return nil
}

// SendWeekly mails the weekly digest rows and returns the recipients it
// reached. An empty list with a nil error means the send was skipped (no
// active recipients), so the caller can decide what to persist.
func (n *Notifier) SendWeekly(now time.Time, rows []model.WeeklyRow) ([]string, error) {
	records, err := n.Store.Recipients()
	if err != nil {
		return nil, fmt.Errorf("load recipients: %w", err)
	}
	recipients := ResolveRecipients(records)
	if len(recipients) == 0 {
		log.Warn().Msg("no active recipients configured, skipping weekly email")
		return nil, nil
	}

	subject := n.WeeklySubjectPrefix + now.In(n.Location).Format("2006-01-02")
	if err := n.Sender.Send(n.From, recipients, subject,
		FormatWeeklyText(rows), FormatWeeklyHTML(rows)); err != nil {
		return nil, fmt.Errorf("send weekly digest: %w", err)
	}
	log.Info().
		Int("rows", len(rows)).
		Int("recipients", len(recipients)).
		Str("subject", subject).
		Msg("weekly digest email sent")
	return recipients, nil
}

// LogWeeklySend writes the audit row for a confirmed weekly dispatch,
// tied to the execution it reported.
func (n *Notifier) LogWeeklySend(now time.Time, recipients []string, executionID string, rowCount int) error {
	return n.Store.LogEmail(&model.EmailLog{
		SentAt:      now.UTC(),
		Subject:     n.WeeklySubjectPrefix + now.In(n.Location).Format("2006-01-02"),
		Recipients:  recipients,
		RowCount:    rowCount,
		Kind:        "weeklySignals",
		ExecutionID: executionID,
	})
}
