package report

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// SlackNotifier posts run reports to one channel.
type SlackNotifier struct {
	api       *slack.Client
	channelID string
}

func NewSlackNotifier(api *slack.Client, channelID string) *SlackNotifier {
	return &SlackNotifier{api: api, channelID: channelID}
}

func (n *SlackNotifier) Post(text string) error {
	if n == nil || n.api == nil || n.channelID == "" {
		return nil
	}
	_, ts, err := n.api.PostMessage(n.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting run report: %w", err)
	}
	log.Printf("report posted channel=%s ts=%s", n.channelID, ts)
	return nil
}

// Deliver logs the report and posts it when a notifier is configured. A
// posting failure is logged only.
func Deliver(n *SlackNotifier, text string) {
	log.Printf("report\n%s", text)
	if err := n.Post(text); err != nil {
		log.Printf("report post error: %v", err)
	}
}
