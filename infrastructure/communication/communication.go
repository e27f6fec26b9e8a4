package communication

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/timesheet"
)

type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
	// APIURL overrides the Slack endpoint, mainly for tests.
	APIURL string
}

func NewSlack(token string, options SlackOption) *Slack {
	var opts []slack.Option
	if options.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(options.APIURL))
	}
	return &Slack{client: slack.New(token, opts...), options: options}
}

func (s *Slack) postMessage(ctx context.Context, channelID, message string) error {
	if channelID == "" {
		return nil
	}
	_, _, err := s.client.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(ctx context.Context, message string) error {
	return s.postMessage(ctx, s.options.InfoChannelID, message)
}

func (s *Slack) Error(ctx context.Context, message string) error {
	return s.postMessage(ctx, s.options.ErrorChannelID, message)
}

// Notify posts workflow events to the info channel. Rejections carry a
// warning marker so they stand out.
func (s *Slack) Notify(ctx context.Context, e timesheet.Event) error {
	msg := e.Summary()
	if e.Action == model.EventRejected {
		msg = ":warning: " + msg
	}
	return s.Info(ctx, msg)
}
