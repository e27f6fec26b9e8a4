package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"timetracker.com/timetracker/infrastructure/mail"
	"timetracker.com/timetracker/service"
)

// Delivery records where an export ended up.
type Delivery struct {
	Key       string `json:"key,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// Deliver archives file to S3 and mails it to recipients, each step only when
// its backend is configured.
func (a *App) Deliver(ctx context.Context, file *service.ExportFile, recipients []string) (*Delivery, error) {
	var d Delivery

	if a.Archive != nil {
		key, err := a.Archive.Put(ctx, file.Filename, file.ContentType, file.Content)
		if err != nil {
			return nil, err
		}
		d.Key = key
		a.Log.Info("export archived", zap.String("key", key))
	}

	if len(recipients) > 0 {
		if a.Mailer == nil {
			return nil, fmt.Errorf("MAIL_FROM is not configured")
		}
		id, err := a.Mailer.Send(ctx, &mail.EmailInfo{
			To:      recipients,
			Subject: "Timesheet export " + file.Filename,
			Text:    "The latest timesheet export is attached.\n",
			Attachments: []mail.Attachment{{
				Filename:    file.Filename,
				ContentType: file.ContentType,
				Content:     file.Content,
			}},
		})
		if err != nil {
			return nil, err
		}
		d.MessageID = id
		a.Log.Info("export mailed", zap.Strings("to", recipients), zap.String("message_id", id))
	}
	return &d, nil
}
