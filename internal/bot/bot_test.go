package bot

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedCall struct {
	method string
	params url.Values
}

// fakeTelegram answers every Bot API call with an empty success payload and
// records what was sent.
type fakeTelegram struct {
	calls []recordedCall
}

func (f *fakeTelegram) RoundTrip(req *http.Request) (*http.Response, error) {
	params := url.Values{}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		params, _ = url.ParseQuery(string(body))
	}
	f.calls = append(f.calls, recordedCall{method: path.Base(req.URL.Path), params: params})

	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body: io.NopCloser(strings.NewReader(
			`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"maktab","username":"maktab_bot"}}`)),
	}, nil
}

func (f *fakeTelegram) sent(method string) []recordedCall {
	var out []recordedCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestBot(t *testing.T) (*Bot, *fakeTelegram) {
	t.Helper()
	transport := &fakeTelegram{}
	api, err := tgbotapi.NewBotAPIWithClient("test-token", tgbotapi.APIEndpoint,
		&http.Client{Transport: transport})
	require.NoError(t, err)
	transport.calls = nil // drop the getMe handshake

	return &Bot{
		api:           api,
		adminID:       42,
		logger:        zap.NewNop(),
		awaitingPhone: map[int64]bool{},
	}, transport
}

func command(chatID, userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: userID},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(text)},
		},
	}
}

func TestBroadcastRequiresAdmin(t *testing.T) {
	b, tg := newTestBot(t)

	b.handleMessage(context.Background(), zap.NewNop(), command(7, 7, "/broadcast"))

	sends := tg.sent("sendMessage")
	require.Len(t, sends, 1)
	assert.Equal(t, "7", sends[0].params.Get("chat_id"))
	assert.Equal(t, "⛔ Только админ может.", sends[0].params.Get("text"))
}

func TestMonthlyReportRequiresAdmin(t *testing.T) {
	b, tg := newTestBot(t)

	b.handleMessage(context.Background(), zap.NewNop(), command(7, 7, "/monthly_report"))

	sends := tg.sent("sendMessage")
	require.Len(t, sends, 1)
	assert.Equal(t, "⛔ Только админ может.", sends[0].params.Get("text"))
}

func TestDocumentUploadRequiresAdmin(t *testing.T) {
	b, tg := newTestBot(t)

	msg := &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 7},
		From:     &tgbotapi.User{ID: 7},
		Document: &tgbotapi.Document{FileID: "abc", FileName: "week_12.xlsx"},
	}
	b.handleDocument(context.Background(), zap.NewNop(), msg)

	assert.Empty(t, tg.sent("getFile"))
	sends := tg.sent("sendMessage")
	require.Len(t, sends, 1)
	assert.Equal(t, "⛔ Только админ может загружать файлы.", sends[0].params.Get("text"))
}

func TestDocumentUploadRejectsUnroutableName(t *testing.T) {
	b, tg := newTestBot(t)

	msg := &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 42},
		From:     &tgbotapi.User{ID: 42},
		Document: &tgbotapi.Document{FileID: "abc", FileName: "scores.xlsx"},
	}
	b.handleDocument(context.Background(), zap.NewNop(), msg)

	assert.Empty(t, tg.sent("getFile"))
	sends := tg.sent("sendMessage")
	require.Len(t, sends, 1)
	assert.Contains(t, sends[0].params.Get("text"), "Имя файла должно содержать")
}

func TestGetExcelRequiresAdmin(t *testing.T) {
	b, tg := newTestBot(t)

	b.handleMessage(context.Background(), zap.NewNop(), command(7, 7, "/get_excel"))

	sends := tg.sent("sendMessage")
	require.Len(t, sends, 1)
	assert.Equal(t, "⛔ Только админ может.", sends[0].params.Get("text"))
}
