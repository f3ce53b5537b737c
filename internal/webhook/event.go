package webhook

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/garyellow/jojo-linebot-go/internal/intent"
)

// eventMeta is the delivery metadata logged alongside an event.
type eventMeta struct {
	id           string
	timestamp    int64
	isRedelivery *bool
}

// toEvent converts a LINE event into the resolver's view. It returns false
// for events the bot never answers: non-text messages, joins, unfollows and
// everything else.
func toEvent(event webhook.EventInterface) (intent.Event, eventMeta, bool) {
	switch e := event.(type) {
	case webhook.MessageEvent:
		text, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			return intent.Event{}, eventMeta{}, false
		}
		return intent.Event{
			Kind:       intent.EventMessage,
			Text:       text.Text,
			ReplyToken: e.ReplyToken,
			ChatID:     getChatID(e.Source),
			UserID:     getUserID(e.Source),
		}, eventMeta{e.WebhookEventId, e.Timestamp, boolPtr(e.DeliveryContext)}, true
	case webhook.PostbackEvent:
		var data string
		if e.Postback != nil {
			data = e.Postback.Data
		}
		return intent.Event{
			Kind:       intent.EventPostback,
			Data:       data,
			ReplyToken: e.ReplyToken,
			ChatID:     getChatID(e.Source),
			UserID:     getUserID(e.Source),
		}, eventMeta{e.WebhookEventId, e.Timestamp, boolPtr(e.DeliveryContext)}, true
	case webhook.FollowEvent:
		return intent.Event{
			Kind:       intent.EventFollow,
			ReplyToken: e.ReplyToken,
			ChatID:     getChatID(e.Source),
			UserID:     getUserID(e.Source),
		}, eventMeta{e.WebhookEventId, e.Timestamp, boolPtr(e.DeliveryContext)}, true
	default:
		return intent.Event{}, eventMeta{}, false
	}
}

// eventType returns the metric label for an SDK event, including the ones
// toEvent rejects.
func eventType(event webhook.EventInterface) string {
	switch e := event.(type) {
	case webhook.MessageEvent:
		if _, ok := e.Message.(webhook.TextMessageContent); ok {
			return "message"
		}
		return "message_other"
	case webhook.PostbackEvent:
		return "postback"
	case webhook.FollowEvent:
		return "follow"
	case webhook.UnfollowEvent:
		return "unfollow"
	case webhook.JoinEvent:
		return "join"
	default:
		return "other"
	}
}

func boolPtr(ctx *webhook.DeliveryContext) *bool {
	if ctx == nil {
		return nil
	}
	val := ctx.IsRedelivery
	return &val
}

// getChatID returns the user ID for personal chats, the group ID for
// groups and the room ID for rooms.
func getChatID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.GroupId
	case webhook.RoomSource:
		return s.RoomId
	}
	return ""
}

// getUserID returns the sending user regardless of chat type.
func getUserID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}
	return ""
}
