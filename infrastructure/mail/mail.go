package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/utils"
)

type EmailInfo struct {
	From        string
	To          []string
	Cc          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// SESAPI is the part of the SES client the mailer uses.
type SESAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

type Mailer struct {
	client SESAPI
	from   string
}

func NewMailer(client SESAPI, from string) *Mailer {
	return &Mailer{client: client, from: from}
}

// Connect builds a mailer on the default AWS credential chain.
func Connect(ctx context.Context, from string) (*Mailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewMailer(ses.NewFromConfig(cfg), from), nil
}

// Send delivers info. An empty From falls back to the mailer's sender.
func (m *Mailer) Send(ctx context.Context, info *EmailInfo) (string, error) {
	if info.From == "" {
		info.From = m.from
	}
	if len(info.To) == 0 {
		return "", errors.New("email has no recipients")
	}

	emailRaw, err := BuildEmailBuffer(info)
	if err != nil {
		return "", err
	}

	res, err := m.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{
			Data: emailRaw.Bytes(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	return utils.Deref(res.MessageId), nil
}

// Notify mails the owner when their timesheet is rejected. Other events and
// owners without an email address are ignored.
func (m *Mailer) Notify(ctx context.Context, e timesheet.Event) error {
	if e.Action != model.EventRejected || utils.Deref(e.Owner.Email) == "" {
		return nil
	}

	text := fmt.Sprintf("Hi %s,\n\nYour timesheet for week %d, %d was rejected by %s.\n\nReason: %s\n\nPlease update your hours and submit the week again.\n",
		e.Owner.DisplayName(), e.Week.Number, e.Week.Year, e.Actor.DisplayName(), e.Reason)

	_, err := m.Send(ctx, &EmailInfo{
		To:      []string{*e.Owner.Email},
		Subject: fmt.Sprintf("Timesheet for week %d rejected", e.Week.Number),
		Text:    text,
	})
	return err
}

func BuildEmailBuffer(info *EmailInfo) (*bytes.Buffer, error) {
	var emailRaw bytes.Buffer
	writer := multipart.NewWriter(&emailRaw)
	boundary := writer.Boundary()

	headers := fmt.Sprintf("From: %s\r\n", info.From)
	headers += fmt.Sprintf("To: %s\r\n", strings.Join(info.To, ", "))
	if len(info.Cc) > 0 {
		headers += fmt.Sprintf("Cc: %s\r\n", strings.Join(info.Cc, ", "))
	}
	headers += fmt.Sprintf("Subject: %s\r\n", info.Subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary)
	headers += "\r\n"
	emailRaw.WriteString(headers)

	altBuf := &bytes.Buffer{}
	altWriter := multipart.NewWriter(altBuf)

	altHeaders := textproto.MIMEHeader{}
	altHeaders.Set("Content-Type", "multipart/alternative; boundary="+altWriter.Boundary())
	altPart, err := writer.CreatePart(altHeaders)
	if err != nil {
		return nil, err
	}

	bodies := []struct{ contentType, body string }{
		{"text/plain; charset=UTF-8", info.Text},
		{"text/html; charset=UTF-8", info.HTML},
	}
	for _, b := range bodies {
		if b.body == "" {
			continue
		}
		part, err := altWriter.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {b.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(part)
		if _, err := qp.Write([]byte(b.body)); err != nil {
			return nil, err
		}
		qp.Close()
	}

	altWriter.Close()
	if _, err := altPart.Write(altBuf.Bytes()); err != nil {
		return nil, err
	}

	for _, att := range info.Attachments {
		h := textproto.MIMEHeader{}
		h.Set("Content-Type", fmt.Sprintf("%s; name=\"%s\"", att.ContentType, att.Filename))
		h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", att.Filename))
		h.Set("Content-Transfer-Encoding", "base64")

		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, err
		}
		b := make([]byte, base64.StdEncoding.EncodedLen(len(att.Content)))
		base64.StdEncoding.Encode(b, att.Content)

		// 76 character lines
		for i := 0; i < len(b); i += 76 {
			end := i + 76
			if end > len(b) {
				end = len(b)
			}
			part.Write(b[i:end])
			part.Write([]byte("\r\n"))
		}
	}

	writer.Close()

	return &emailRaw, nil
}
