package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

// newTestClient points a real gmail.Service at an httptest server
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return NewClient(svc)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func testMessage(id, from, subject, body string) *gmail.Message {
	return &gmail.Message{
		Id: id,
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: from},
				{Name: "Subject", Value: subject},
				{Name: "Date", Value: "Mon, 02 Jan 2006 15:04:05 -0700"},
			},
			Body: &gmail.MessagePartBody{Data: b64(body)},
		},
	}
}

func TestNewClient(t *testing.T) {
	service := &gmail.Service{}
	client := NewClient(service)

	assert.NotNil(t, client)
	assert.Equal(t, service, client.Service)
	assert.Empty(t, client.profileEmail)
}

func TestClient_NotInitialized(t *testing.T) {
	ctx := context.Background()
	for _, c := range []*Client{nil, {}} {
		_, err := c.ListRecent(ctx, 1, 10, "INBOX")
		assert.ErrorContains(t, err, "gmail client not initialized")

		_, err = c.GetMessage(ctx, "x")
		assert.ErrorContains(t, err, "gmail client not initialized")

		_, err = c.SendMessage(ctx, "", "a@b.c", "s", "b")
		assert.ErrorContains(t, err, "gmail client not initialized")

		email, err := c.ActiveAccountEmail(ctx)
		assert.ErrorContains(t, err, "gmail client not initialized")
		assert.Empty(t, email)
	}
}

func TestRecentQuery(t *testing.T) {
	assert.Equal(t, "newer_than:1h", RecentQuery(1))
	assert.Equal(t, "newer_than:24h", RecentQuery(24))
	assert.Equal(t, "newer_than:0h", RecentQuery(0))
}

func TestClient_ListRecent(t *testing.T) {
	var gotQuery, gotLabel, gotMax string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gmail/v1/users/me/messages", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotLabel = r.URL.Query().Get("labelIds")
		gotMax = r.URL.Query().Get("maxResults")
		writeJSON(t, w, map[string]any{"messages": []map[string]string{{"id": "m1"}, {"id": "m2"}}})
	}))

	msgs, err := client.ListRecent(context.Background(), 3, 10, "INBOX")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].Id)
	assert.Equal(t, "m2", msgs[1].Id)
	assert.Equal(t, "newer_than:3h", gotQuery)
	assert.Equal(t, "INBOX", gotLabel)
	assert.Equal(t, "10", gotMax)
}

func TestClient_ListRecent_Error(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom"}}`, http.StatusInternalServerError)
	}))

	_, err := client.ListRecent(context.Background(), 1, 10, "INBOX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not list messages")
}

func TestClient_GetMessageWithContent(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gmail/v1/users/me/messages/abc", r.URL.Path)
		writeJSON(t, w, testMessage("abc", "Jane <jane@example.com>", "Hello", "Body text"))
	}))

	msg, err := client.GetMessageWithContent(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", msg.Id)
	assert.Equal(t, "Jane <jane@example.com>", msg.From)
	assert.Equal(t, "Hello", msg.Subject)
	assert.Equal(t, "Body text", msg.Body)
	assert.Equal(t, 2006, msg.Date.Year())
}

func TestClient_GetMessagesParallel(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		writeJSON(t, w, testMessage(id, "x@y.z", "subject "+id, "body "+id))
	}))

	ids := []string{"c", "a", "b", "d"}
	msgs, err := client.GetMessagesParallel(context.Background(), ids, 2)
	require.NoError(t, err)
	require.Len(t, msgs, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, msgs[i].Id)
		assert.Equal(t, "body "+id, msgs[i].Body)
	}
	assert.Equal(t, int32(4), calls.Load())
}

func TestClient_GetMessagesParallel_EmptyAndError(t *testing.T) {
	msgs, err := (&Client{}).GetMessagesParallel(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/bad") {
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
			return
		}
		writeJSON(t, w, testMessage("ok", "", "", ""))
	}))
	_, err = client.GetMessagesParallel(context.Background(), []string{"ok", "bad"}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestClient_SendMessage(t *testing.T) {
	var raw string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gmail/v1/users/me/messages/send", r.URL.Path)
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var m gmail.Message
		require.NoError(t, json.Unmarshal(data, &m))
		raw = m.Raw
		writeJSON(t, w, map[string]string{"id": "sent-1"})
	}))

	id, err := client.SendMessage(context.Background(), "", "bob@example.com", "Hi", "See you")
	require.NoError(t, err)
	assert.Equal(t, "sent-1", id)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "To: bob@example.com\r\n")
	assert.Contains(t, string(decoded), "Subject: Hi\r\n")
	assert.True(t, strings.HasSuffix(string(decoded), "\r\n\r\nSee you"))
}

func TestBuildRawMessage_EncodesNonASCIISubject(t *testing.T) {
	raw, err := BuildRawMessage("me", "bob@example.com", "Reunión mañana", "b")
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	msg, err := mail.ReadMessage(strings.NewReader(string(decoded)))
	require.NoError(t, err)

	header := msg.Header.Get("Subject")
	assert.True(t, strings.HasPrefix(header, "=?utf-8?q?"), header)
	subject, err := new(mime.WordDecoder).DecodeHeader(header)
	require.NoError(t, err)
	assert.Equal(t, "Reunión mañana", subject)
}

func TestBuildRawMessage_InvalidRecipient(t *testing.T) {
	_, err := BuildRawMessage("me", "not an address", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestClient_ActiveAccountEmail(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/gmail/v1/users/me/profile", r.URL.Path)
		writeJSON(t, w, map[string]string{"emailAddress": "me@example.com"})
	}))

	for n := 0; n < 3; n++ {
		email, err := client.ActiveAccountEmail(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "me@example.com", email)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestExtractBody(t *testing.T) {
	tests := []struct {
		name     string
		msg      *gmail.Message
		expected string
	}{
		{"nil_message", nil, ""},
		{"nil_payload", &gmail.Message{}, ""},
		{
			"single_part",
			&gmail.Message{Payload: &gmail.MessagePart{Body: &gmail.MessagePartBody{Data: b64("hello")}}},
			"hello",
		},
		{
			"top_level_parts_concatenated",
			&gmail.Message{Payload: &gmail.MessagePart{Parts: []*gmail.MessagePart{
				{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("plain ")}},
				{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>html</p>")}},
			}}},
			"plain <p>html</p>",
		},
		{
			"unpadded_base64",
			&gmail.Message{Payload: &gmail.MessagePart{Body: &gmail.MessagePartBody{
				Data: base64.RawURLEncoding.EncodeToString([]byte("no padding!")),
			}}},
			"no padding!",
		},
		{
			"nested_fallback_prefers_plain",
			&gmail.Message{Payload: &gmail.MessagePart{Parts: []*gmail.MessagePart{
				{MimeType: "multipart/alternative", Parts: []*gmail.MessagePart{
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<b>x</b>")}},
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("x")}},
				}},
			}}},
			"x",
		},
		{
			"nested_fallback_html",
			&gmail.Message{Payload: &gmail.MessagePart{Parts: []*gmail.MessagePart{
				{MimeType: "multipart/related", Parts: []*gmail.MessagePart{
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<b>x</b>")}},
				}},
			}}},
			"<b>x</b>",
		},
		{
			"quoted_printable_nested",
			&gmail.Message{Payload: &gmail.MessagePart{Parts: []*gmail.MessagePart{
				{MimeType: "multipart/alternative", Parts: []*gmail.MessagePart{{
					MimeType: "text/plain",
					Headers:  []*gmail.MessagePartHeader{{Name: "Content-Transfer-Encoding", Value: "quoted-printable"}},
					Body:     &gmail.MessagePartBody{Data: b64("caf=C3=A9")},
				}}},
			}}},
			"café",
		},
		{
			"undecodable_data",
			&gmail.Message{Payload: &gmail.MessagePart{Body: &gmail.MessagePartBody{Data: "%%%"}}},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractBody(tt.msg))
		})
	}
}

func TestExtractHeaderAndDate(t *testing.T) {
	assert.Empty(t, extractHeader(nil, "Subject"))
	assert.Empty(t, extractHeader(&gmail.Message{}, "Subject"))

	msg := testMessage("1", "a@b.c", "Subj", "")
	assert.Equal(t, "Subj", extractHeader(msg, "subject"))

	assert.True(t, extractDate(&gmail.Message{}).IsZero())
	internal := extractDate(&gmail.Message{InternalDate: 1700000000000})
	assert.Equal(t, int64(1700000000), internal.Unix())
}
