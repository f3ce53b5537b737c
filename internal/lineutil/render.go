package lineutil

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/jojo-linebot-go/internal/reply"
)

// RenderSequence converts composed units into LINE messages in order.
// Text units carry their choices as a quick reply: postback choices become
// postback actions and text choices become message actions. All messages
// share sender.
func RenderSequence(seq reply.Sequence, sender *messaging_api.Sender) []messaging_api.MessageInterface {
	messages := make([]messaging_api.MessageInterface, 0, len(seq))
	for _, u := range seq {
		var msg messaging_api.MessageInterface
		switch u.Kind {
		case reply.UnitImage:
			msg = NewImageMessage(u.ImageURL, u.PreviewURL)
		case reply.UnitText:
			text := NewTextMessage(u.Text)
			if len(u.Choices) > 0 {
				text.QuickReply = NewQuickReply(choiceItems(u.Choices))
			}
			msg = text
		default:
			continue
		}
		messages = append(messages, SetSender(msg, sender))
	}
	return messages
}

func choiceItems(choices []reply.Choice) []QuickReplyItem {
	items := make([]QuickReplyItem, 0, len(choices))
	for _, ch := range choices {
		if ch.Data != "" {
			items = append(items, QuickReplyItem{Action: NewPostbackAction(ch.Label, ch.Data)})
		} else {
			items = append(items, QuickReplyItem{Action: NewMessageAction(ch.Label, ch.Text)})
		}
	}
	return items
}
