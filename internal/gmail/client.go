package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
)

const (
	user              = "me"
	defaultMaxWorkers = 10
	maxWorkersCap     = 15
)

// Client wraps the gmail.Service and provides convenience methods
type Client struct {
	Service *gmail.Service

	mu           sync.Mutex
	profileEmail string
}

// NewClient creates a new Gmail client
func NewClient(service *gmail.Service) *Client {
	return &Client{Service: service}
}

// Message represents a Gmail message with extracted content
type Message struct {
	*gmail.Message
	Body    string
	Subject string
	From    string
	To      string
	Date    time.Time
}

func (c *Client) ready() error {
	if c == nil || c.Service == nil {
		return fmt.Errorf("gmail client not initialized")
	}
	return nil
}

// ListRecent returns up to maxResults messages under label received in the last hours
func (c *Client) ListRecent(ctx context.Context, hours int, maxResults int64, label string) ([]*gmail.Message, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	call := c.Service.Users.Messages.List(user).
		Q(RecentQuery(hours)).
		Context(ctx)
	if label != "" {
		call = call.LabelIds(label)
	}
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("could not list messages: %w", err)
	}
	return res.Messages, nil
}

// RecentQuery builds the Gmail search expression for the last hours
func RecentQuery(hours int) string {
	return fmt.Sprintf("newer_than:%dh", hours)
}

// GetMessage retrieves a specific message by ID
func (c *Client) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	msg, err := c.Service.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("could not get message %s: %w", id, err)
	}
	return msg, nil
}

// GetMessageWithContent retrieves a message and extracts its headers and body
func (c *Client) GetMessageWithContent(ctx context.Context, id string) (*Message, error) {
	msg, err := c.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewMessage(msg), nil
}

// NewMessage extracts headers and body from a raw API message
func NewMessage(msg *gmail.Message) *Message {
	return &Message{
		Message: msg,
		Body:    ExtractBody(msg),
		Subject: extractHeader(msg, "Subject"),
		From:    extractHeader(msg, "From"),
		To:      extractHeader(msg, "To"),
		Date:    extractDate(msg),
	}
}

// GetMessagesParallel fetches messages with a bounded worker pool.
// Results keep the order of ids; the first failure cancels the rest.
func (c *Client) GetMessagesParallel(ctx context.Context, ids []string, maxWorkers int) ([]*Message, error) {
	if len(ids) == 0 {
		return []*Message{}, nil
	}
	if err := c.ready(); err != nil {
		return nil, err
	}
	if maxWorkers <= 0 || maxWorkers > maxWorkersCap {
		maxWorkers = defaultMaxWorkers
	}

	out := make([]*Message, len(ids))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxWorkers)
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			m, err := c.GetMessageWithContent(egCtx, id)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage sends a plain text message and returns its ID
func (c *Client) SendMessage(ctx context.Context, from, to, subject, body string) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	raw, err := BuildRawMessage(from, to, subject, body)
	if err != nil {
		return "", err
	}

	sent, err := c.Service.Users.Messages.Send(user, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("could not send message: %w", err)
	}
	return sent.Id, nil
}

// BuildRawMessage renders an RFC 822 message encoded for the Gmail API
func BuildRawMessage(from, to, subject, body string) (string, error) {
	if _, err := mail.ParseAddressList(to); err != nil {
		return "", fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	if from == "" {
		from = user
	}

	var sb strings.Builder
	// Fixed header order keeps the output stable
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(sb.String())), nil
}

// ActiveAccountEmail returns the authenticated account address, cached after the first call
func (c *Client) ActiveAccountEmail(ctx context.Context) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profileEmail != "" {
		return c.profileEmail, nil
	}
	prof, err := c.Service.Users.GetProfile(user).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("could not get profile: %w", err)
	}
	c.profileEmail = prof.EmailAddress
	return c.profileEmail, nil
}

// Helper functions
func extractHeader(msg *gmail.Message, name string) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	for _, header := range msg.Payload.Headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}
	return ""
}

func extractDate(msg *gmail.Message) time.Time {
	dateStr := extractHeader(msg, "Date")
	if dateStr != "" {
		if t, err := mail.ParseDate(dateStr); err == nil {
			return t
		}
	}
	if msg != nil && msg.InternalDate > 0 {
		return time.UnixMilli(msg.InternalDate)
	}
	return time.Time{}
}

// ExtractBody returns the message text. Top-level parts are concatenated in
// order; a single-part message uses the payload body. When neither yields
// anything the nested parts are searched for text/plain, then text/html.
func ExtractBody(msg *gmail.Message) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	p := msg.Payload

	var body strings.Builder
	if len(p.Parts) > 0 {
		for _, part := range p.Parts {
			if part.Body != nil && part.Body.Data != "" {
				body.WriteString(decodeData(part.Body.Data))
			}
		}
	} else if p.Body != nil && p.Body.Data != "" {
		body.WriteString(decodeData(p.Body.Data))
	}
	if body.Len() > 0 {
		return body.String()
	}

	if text := findPart(p, "text/plain"); text != "" {
		return text
	}
	return findPart(p, "text/html")
}

func findPart(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if strings.EqualFold(part.MimeType, mimeType) && part.Body != nil && part.Body.Data != "" {
		text := decodeData(part.Body.Data)
		if isQuotedPrintable(part) {
			if decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(text))); err == nil {
				return string(decoded)
			}
		}
		return text
	}
	for _, p := range part.Parts {
		if text := findPart(p, mimeType); text != "" {
			return text
		}
	}
	return ""
}

func isQuotedPrintable(part *gmail.MessagePart) bool {
	for _, h := range part.Headers {
		if strings.EqualFold(h.Name, "Content-Transfer-Encoding") {
			return strings.EqualFold(strings.TrimSpace(h.Value), "quoted-printable")
		}
	}
	return false
}

// decodeData decodes base64url with or without padding; undecodable data yields ""
func decodeData(data string) string {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "=")); err == nil {
		return string(b)
	}
	return ""
}
