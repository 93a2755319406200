package services

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/duties"
)

// GmailClient defines the email operation needed for reminders
type GmailClient interface {
	SendEmail(to, subject, body string) error
}

// ReminderTemplate holds the subject and body templates of a reminder email.
// Both are text/template sources executed with ReminderData.
type ReminderTemplate struct {
	Subject string
	Body    string
}

// ReminderData is available to reminder templates
type ReminderData struct {
	Name    string
	FlatFee int
	Club    string
}

// ReminderSent is a member who was sent a reminder, or would be in a dry run
type ReminderSent struct {
	MemberID string
	Name     string
	Email    string
}

// FailedEmail is a reminder that could not be sent
type FailedEmail struct {
	MemberID string
	Name     string
	Email    string
	Error    string
}

// ReminderResult reports who was reminded
type ReminderResult struct {
	Sent   []ReminderSent
	Failed []FailedEmail
	// NoEmail lists mailing list members without an email address
	NoEmail []ReminderSent
	DryRun  bool
}

// DefaultReminderTemplate is used when no template is configured
func DefaultReminderTemplate() ReminderTemplate {
	return ReminderTemplate{
		Subject: "Reminder: volunteer duties at {{.Club}}",
		Body: "Hi {{.Name}}\n\n" +
			"Our records show you have not yet done a volunteer task this season.\n" +
			"Please sign up for one of the open tasks, or pay the participation fee of EUR {{.FlatFee}}.\n\n" +
			"Thanks\n{{.Club}}\n",
	}
}

// SendReminders emails every member on the mailing list: members who have
// neither completed a task nor paid. With dryRun set nothing is sent and the
// recipients are returned as if they had been.
func SendReminders(
	ctx context.Context,
	store DocumentStore,
	gmailClient GmailClient,
	logger *zap.Logger,
	rates duties.Rates,
	tmpl ReminderTemplate,
	club string,
	dryRun bool,
) (*ReminderResult, error) {
	subjectTmpl, err := template.New("subject").Parse(tmpl.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reminder subject: %w", err)
	}
	bodyTmpl, err := template.New("body").Parse(tmpl.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reminder body: %w", err)
	}

	doc, err := load(ctx, store)
	if err != nil {
		return nil, err
	}

	recipients := duties.MailingList(doc, rates)
	logger.Debug("Found members needing a reminder", zap.Int("count", len(recipients)))

	result := &ReminderResult{DryRun: dryRun}
	for _, m := range recipients {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		recipient := ReminderSent{MemberID: m.ID, Name: m.Name, Email: m.Email}
		if m.Email == "" {
			logger.Debug("Member has no email address", zap.String("member_id", m.ID))
			result.NoEmail = append(result.NoEmail, recipient)
			continue
		}

		data := ReminderData{Name: m.Name, FlatFee: rates.FlatFee, Club: club}
		subject, err := render(subjectTmpl, data)
		if err != nil {
			return nil, err
		}
		body, err := render(bodyTmpl, data)
		if err != nil {
			return nil, err
		}

		if dryRun {
			result.Sent = append(result.Sent, recipient)
			continue
		}

		logger.Info("Sending reminder email",
			zap.String("member_id", m.ID),
			zap.String("email", m.Email))

		if err := gmailClient.SendEmail(m.Email, subject, body); err != nil {
			logger.Warn("Failed to send reminder email",
				zap.String("member_id", m.ID),
				zap.String("email", m.Email),
				zap.Error(err))
			result.Failed = append(result.Failed, FailedEmail{
				MemberID: m.ID,
				Name:     m.Name,
				Email:    m.Email,
				Error:    err.Error(),
			})
			continue
		}
		result.Sent = append(result.Sent, recipient)
	}

	return result, nil
}

func render(t *template.Template, data ReminderData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", t.Name(), err)
	}
	return buf.String(), nil
}
