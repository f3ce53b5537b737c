package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// NewSender creates the sender shared by every message of one reply, so
// the whole reply shows a single name and avatar. An empty iconURL keeps
// the bot's profile picture.
func NewSender(name, iconURL string) *messaging_api.Sender {
	if name == "" && iconURL == "" {
		return nil
	}
	return &messaging_api.Sender{
		Name:    TruncateRunes(name, MaxSenderNameLength),
		IconUrl: iconURL,
	}
}
