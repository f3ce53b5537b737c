package lineutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateRunes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		text     string
		maxRunes int
		want     string
	}{
		{"short", "歐拉", 20, "歐拉"},
		{"exact", "12345", 5, "12345"},
		{"cut", "歐拉歐拉歐拉歐拉", 5, "歐拉..."},
		{"tiny limit", "abcdef", 2, "ab"},
		{"zero", "abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, TruncateRunes(tt.text, tt.maxRunes))
		})
	}
}

func TestNewTextMessage(t *testing.T) {
	t.Parallel()
	msg := NewTextMessage("木大木大")
	assert.Equal(t, "木大木大", msg.Text)

	long := NewTextMessage(strings.Repeat("無", MaxTextMessageLength+10))
	assert.Equal(t, MaxTextMessageLength, utf8.RuneCountInString(long.Text))
	assert.True(t, strings.HasSuffix(long.Text, "..."))
}

func TestNewImageMessage(t *testing.T) {
	t.Parallel()
	msg := NewImageMessage("https://a.example/full.jpg", "https://a.example/preview.jpg")
	assert.Equal(t, "https://a.example/full.jpg", msg.OriginalContentUrl)
	assert.Equal(t, "https://a.example/preview.jpg", msg.PreviewImageUrl)
}

func TestNewQuickReply(t *testing.T) {
	t.Parallel()
	items := make([]QuickReplyItem, 20)
	for i := range items {
		items[i] = QuickReplyItem{Action: NewMessageAction("label", "text")}
	}
	qr := NewQuickReply(items)
	assert.Len(t, qr.Items, MaxQuickReplyItemCount)

	assert.Empty(t, NewQuickReply(nil).Items)
}

func TestNewPostbackAction(t *testing.T) {
	t.Parallel()
	action, ok := NewPostbackAction("接受挑戰", "act=darby_yes").(*messaging_api.PostbackAction)
	require.True(t, ok)
	assert.Equal(t, "接受挑戰", action.Label)
	assert.Equal(t, "接受挑戰", action.DisplayText)
	assert.Equal(t, "act=darby_yes", action.Data)

	long, ok := NewPostbackAction(strings.Repeat("歐", 30), "act=draw").(*messaging_api.PostbackAction)
	require.True(t, ok)
	assert.Equal(t, MaxQuickReplyLabel, utf8.RuneCountInString(long.Label))
}

func TestNewMessageAction(t *testing.T) {
	t.Parallel()
	action, ok := NewMessageAction("再抽一次", "今天吃什麼").(*messaging_api.MessageAction)
	require.True(t, ok)
	assert.Equal(t, "再抽一次", action.Label)
	assert.Equal(t, "今天吃什麼", action.Text)
}

func TestSetSender(t *testing.T) {
	t.Parallel()
	sender := &messaging_api.Sender{Name: "JOJO"}

	text := SetSender(NewTextMessage("hi"), sender).(*messaging_api.TextMessage)
	assert.Same(t, sender, text.Sender)

	img := SetSender(NewImageMessage("https://a/b", "https://a/b"), sender).(*messaging_api.ImageMessage)
	assert.Same(t, sender, img.Sender)

	plain := SetSender(NewTextMessage("hi"), nil).(*messaging_api.TextMessage)
	assert.Nil(t, plain.Sender)
}

func TestNewSender(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewSender("", ""))

	s := NewSender("JOJO", "https://jojo.example.com/media/jojo_pose.png")
	require.NotNil(t, s)
	assert.Equal(t, "JOJO", s.Name)
	assert.Equal(t, "https://jojo.example.com/media/jojo_pose.png", s.IconUrl)

	long := NewSender(strings.Repeat("J", 40), "")
	assert.Equal(t, MaxSenderNameLength, utf8.RuneCountInString(long.Name))
	assert.Empty(t, long.IconUrl)
}
