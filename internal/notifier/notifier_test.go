package notifier

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentry/internal/model"
)

// fakeSender records sends and can be told to fail.
type fakeSender struct {
	fail  bool
	sends []sentMail
}

type sentMail struct {
	from       string
	recipients []string
	subject    string
	text       string
	html       string
}

func (f *fakeSender) Send(from string, recipients []string, subject, textBody, htmlBody string) error {
	if f.fail {
		return fmt.Errorf("smtp: connection refused")
	}
	f.sends = append(f.sends, sentMail{from, recipients, subject, textBody, htmlBody})
	return nil
}

// fakeNotifyStore serves a fixed audience and records logged sends.
type fakeNotifyStore struct {
	recipients []model.Recipient
	logged     []*model.EmailLog
}

func (f *fakeNotifyStore) Recipients() ([]model.Recipient, error) { return f.recipients, nil }
func (f *fakeNotifyStore) AddRecipient(r model.Recipient) error {
	f.recipients = append(f.recipients, r)
	return nil
}
func (f *fakeNotifyStore) LogEmail(entry *model.EmailLog) error {
	f.logged = append(f.logged, entry)
	return nil
}

func testNotifier(sender Sender, st *fakeNotifyStore) *Notifier {
	loc, _ := time.LoadLocation("America/Toronto")
	return NewNotifier(st, sender, "bot@example.com",
		"Tickers can be invested in - ", "Favorable stocks to invest on ", loc)
}

var testAlerts = []model.AggregatedAlert{
	{Field: model.RuleLessThanMin90, Ticker: "T.TO", MinPrice: 18.50, CompareWith: 19.21},
}

func TestSendDigest_Success(t *testing.T) {
	sender := &fakeSender{}
	st := &fakeNotifyStore{recipients: []model.Recipient{{Email: "a@example.com", Active: true}}}
	n := testNotifier(sender, st)

	now := time.Date(2025, 6, 1, 16, 0, 0, 0, time.UTC)
	require.NoError(t, n.SendDigest(now, testAlerts))

	require.Len(t, sender.sends, 1)
	mail := sender.sends[0]
	assert.Equal(t, "bot@example.com", mail.from)
	assert.Equal(t, []string{"a@example.com"}, mail.recipients)
	assert.Equal(t, "Tickers can be invested in - 2025-06-01", mail.subject)
	assert.Contains(t, mail.text, "T.TO")
	assert.Contains(t, mail.html, "18.5000")

	// Exactly one audit row per confirmed dispatch.
	require.Len(t, st.logged, 1)
	assert.Equal(t, mail.subject, st.logged[0].Subject)
	assert.Equal(t, 1, st.logged[0].RowCount)
}

func TestSendDigest_NoAlertsNoEmail(t *testing.T) {
	sender := &fakeSender{}
	st := &fakeNotifyStore{recipients: []model.Recipient{{Email: "a@example.com", Active: true}}}
	n := testNotifier(sender, st)

	require.NoError(t, n.SendDigest(time.Now(), nil))
	assert.Empty(t, sender.sends)
	assert.Empty(t, st.logged)
}

func TestSendDigest_NoRecipientsNoEmail(t *testing.T) {
	sender := &fakeSender{}
	st := &fakeNotifyStore{recipients: []model.Recipient{{Email: "a@example.com", Active: false}}}
	n := testNotifier(sender, st)

	require.NoError(t, n.SendDigest(time.Now(), testAlerts))
	assert.Empty(t, sender.sends)
	assert.Empty(t, st.logged)
}

func TestSendDigest_FailureWritesNoLog(t *testing.T) {
	sender := &fakeSender{fail: true}
	st := &fakeNotifyStore{recipients: []model.Recipient{{Email: "a@example.com", Active: true}}}
	n := testNotifier(sender, st)

	err := n.SendDigest(time.Now(), testAlerts)
	require.Error(t, err)
	assert.Empty(t, st.logged, "failed dispatch must not be logged as sent")
}

func TestResolveRecipients(t *testing.T) {
	records := []model.Recipient{
		{Email: "a@x.com", Active: true},
		{Email: "a@x.com", Emails: []string{"b@x.com", " a@x.com "}, Active: true},
		{Email: "c@x.com", Active: false},
		{Email: "  ", Active: true},
	}
	got := ResolveRecipients(records)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, got)
}

func TestResolveRecipients_Empty(t *testing.T) {
	assert.Empty(t, ResolveRecipients(nil))
	assert.Empty(t, ResolveRecipients([]model.Recipient{{Email: "a@x.com", Active: false}}))
}

func TestFormatText(t *testing.T) {
	out := FormatText(testAlerts)
	assert.Contains(t, out, "T.TO")
	assert.Contains(t, out, "18.5000")
	assert.Contains(t, out, "19.2100")
	assert.Contains(t, out, "1 signal(s) today.")

	assert.Contains(t, FormatText(nil), "No matching signals")
}

func TestFormatHTML(t *testing.T) {
	out := FormatHTML(testAlerts)
	assert.True(t, strings.HasPrefix(out, "<html>"))
	assert.Contains(t, out, "Less than minimum of last 90 days")
	assert.Contains(t, out, "T.TO")
}

func TestRuleLabel_Fallback(t *testing.T) {
	assert.Equal(t, "Less than minimum of last 30 days", RuleLabel(model.RuleLessThanMin30))
	assert.Equal(t, "lessThanAvg30", RuleLabel(model.RuleLessThanAvg30))
}
