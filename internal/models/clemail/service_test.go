package clemail

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	return Config{
		APIKey:      testKey,
		APIURL:      url,
		SenderEmail: "noreply@example.com",
		SenderName:  "Portfolio",
		AdminEmail:  "admin@example.com",
		AdminName:   "Wasi",
		Timeout:     2 * time.Second,
		BrandColor:  "indigo",
		SiteName:    "Portfolio",
		SiteURL:     "https://portfolio.example.com",
	}
}

func testContact() Contact {
	return Contact{
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Phone:     "+33 6 00 00 00 00",
		Message:   "Hello, I'd like to discuss a project.",
		CreatedAt: time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC),
	}
}

// recordingSender capture les messages sans appel réseau
type recordingSender struct {
	mu    sync.Mutex
	msgs  []*Message
	err   error
	delay time.Duration
}

func (r *recordingSender) Send(ctx context.Context, msg *Message) (string, error) {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return "", &Error{Kind: Timeout, Recipient: msg.recipient(), Err: ctx.Err()}
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	if r.err != nil {
		return "", r.err
	}
	return "msg-" + msg.Kind, nil
}

func (r *recordingSender) messages() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Message(nil), r.msgs...)
}

func TestIsConfigured(t *testing.T) {
	tests := []struct {
		key    string
		sender string
		want   bool
	}{
		{"", "noreply@example.com", false},
		{"   ", "noreply@example.com", false},
		{"xkeysib-your-api-key", "noreply@example.com", false},
		{"sk-live-123", "noreply@example.com", false},
		{"xkeysib-abc123", "", false},
		{"xkeysib-abc123", "  ", false},
		{"xkeysib-abc123", "noreply@example.com", true},
	}
	for _, tt := range tests {
		cfg := Config{APIKey: tt.key, SenderEmail: tt.sender}
		assert.Equal(t, tt.want, cfg.IsConfigured(), "key %q sender %q", tt.key, tt.sender)
	}
}

func TestMissingSenderIsNotConfigured(t *testing.T) {
	cfg := testConfig("")
	cfg.SenderEmail = ""
	cfg.AdminEmail = "admin@example.com"
	sender := &recordingSender{}
	svc, err := NewService(cfg, sender)
	require.NoError(t, err)

	res, err := svc.SendAdminReply(context.Background(), Reply{Name: "Jane", Email: "jane@example.com", Body: "Thanks"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.Equal(t, "EMAIL_NOT_CONFIGURED", res.Code)

	d := svc.NotifyContact(context.Background(), testContact(), time.Second)
	assert.Equal(t, StatusSkipped, d.AdminNotification.Status)
	assert.Equal(t, StatusSkipped, d.AutoReply.Status)

	assert.Empty(t, sender.messages())
}

func TestUnconfiguredSkipsWithoutNetwork(t *testing.T) {
	f := newFakeBrevo(t, okHandler)
	cfg := testConfig(f.server.URL)
	cfg.APIKey = ""

	svc, err := NewService(cfg, nil)
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, StatusSkipped, svc.SendContactNotification(ctx, testContact()).Status)
	assert.Equal(t, StatusSkipped, svc.SendAutoReplyToUser(ctx, testContact()).Status)

	res, err := svc.SendAdminReply(ctx, Reply{Name: "Jane", Email: "jane@example.com", Body: "Thanks"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "EMAIL_NOT_CONFIGURED", res.Code)

	assert.Equal(t, int32(0), f.calls.Load())
}

func TestSendContactNotification(t *testing.T) {
	sender := &recordingSender{}
	svc, err := NewService(testConfig(""), sender)
	require.NoError(t, err)

	res := svc.SendContactNotification(context.Background(), testContact())
	assert.Equal(t, StatusSent, res.Status)
	assert.Equal(t, "msg-contact_notification", res.MessageID)

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, "admin@example.com", msg.To[0].Email)
	require.NotNil(t, msg.ReplyTo)
	assert.Equal(t, "jane@example.com", msg.ReplyTo.Email)
	assert.Equal(t, "New Contact Form Submission from Jane Doe", msg.Subject)
	assert.Contains(t, msg.HTML, "Jane Doe")
	assert.Contains(t, msg.HTML, "+33 6 00 00 00 00")
	assert.Contains(t, msg.HTML, "discuss a project.")
	assert.Contains(t, msg.Text, "Phone: +33 6 00 00 00 00")
	assert.Contains(t, msg.Text, "Friday, October 16, 2026")
}

func TestSendAutoReplyToUser(t *testing.T) {
	sender := &recordingSender{}
	svc, err := NewService(testConfig(""), sender)
	require.NoError(t, err)

	res := svc.SendAutoReplyToUser(context.Background(), testContact())
	assert.Equal(t, StatusSent, res.Status)

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "jane@example.com", msgs[0].To[0].Email)
	assert.Equal(t, "Thank you for contacting us!", msgs[0].Subject)
	assert.Contains(t, msgs[0].Text, "Hi Jane Doe")
	assert.Contains(t, msgs[0].Text, "Wasi")
}

func TestSendFailureIsReportedNotReturned(t *testing.T) {
	sender := &recordingSender{err: &Error{Kind: AuthFailed, Recipient: "admin@example.com"}}
	svc, err := NewService(testConfig(""), sender)
	require.NoError(t, err)

	res := svc.SendContactNotification(context.Background(), testContact())
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "AUTH_FAILED", res.Code)
	assert.Empty(t, res.MessageID)
}

func TestSendAdminReply(t *testing.T) {
	f := newFakeBrevo(t, okHandler)
	svc, err := NewService(testConfig(f.server.URL), nil)
	require.NoError(t, err)

	res, err := svc.SendAdminReply(context.Background(), Reply{
		Name:            "Jane",
		Email:           "jane@example.com",
		Body:            "Thanks for **reaching out**!",
		OriginalMessage: "Hello there",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSent, res.Status)
	assert.NotEmpty(t, res.MessageID)

	p := f.payload()
	assert.Equal(t, "Reply from Portfolio Admin", p.Subject)
	assert.Equal(t, "jane@example.com", p.To[0].Email)
	assert.Contains(t, p.HTMLContent, "<strong>reaching out</strong>")
	assert.Contains(t, p.HTMLContent, "Hello there")
	assert.Contains(t, p.TextContent, "Thanks for reaching out!")
	assert.False(t, strings.Contains(p.TextContent, "**"))
}

func TestSendAdminReplyErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
		code   string
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuthFailed, "AUTH_FAILED"},
		{"bad request", http.StatusBadRequest, ErrSendFailed, "EMAIL_SEND_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeBrevo(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"refused"}`))
			})
			svc, err := NewService(testConfig(f.server.URL), nil)
			require.NoError(t, err)

			res, err := svc.SendAdminReply(context.Background(), Reply{Name: "Jane", Email: "jane@example.com", Subject: "Re: project", Body: "Hi"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.Equal(t, tt.code, res.Code)
			assert.Equal(t, "Re: project", f.payload().Subject)
		})
	}
}

func TestSendAdminReplyTimeout(t *testing.T) {
	release := make(chan struct{})
	f := newFakeBrevo(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	cfg := testConfig(f.server.URL)
	cfg.Timeout = 100 * time.Millisecond
	svc, err := NewService(cfg, nil)
	require.NoError(t, err)

	start := time.Now()
	res, err := svc.SendAdminReply(context.Background(), Reply{Name: "Jane", Email: "jane@example.com", Body: "Hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, "CONNECTION_TIMEOUT", res.Code)
	assert.Less(t, time.Since(start), cfg.Timeout+time.Second)
}

func TestNotifyContactSettled(t *testing.T) {
	sender := &recordingSender{}
	svc, err := NewService(testConfig(""), sender)
	require.NoError(t, err)

	d := svc.NotifyContact(context.Background(), testContact(), time.Second)
	assert.Equal(t, StatusSent, d.AdminNotification.Status)
	assert.Equal(t, StatusSent, d.AutoReply.Status)
	assert.Len(t, sender.messages(), 2)
}

func TestNotifyContactUnconfigured(t *testing.T) {
	cfg := testConfig("")
	cfg.APIKey = "xkeysib-your-api-key"
	sender := &recordingSender{}
	svc, err := NewService(cfg, sender)
	require.NoError(t, err)

	d := svc.NotifyContact(context.Background(), testContact(), time.Second)
	assert.Equal(t, StatusSkipped, d.AdminNotification.Status)
	assert.Equal(t, StatusSkipped, d.AutoReply.Status)
	assert.Empty(t, sender.messages())
}

func TestNotifyContactQueuedWhenSlow(t *testing.T) {
	sender := &recordingSender{delay: 300 * time.Millisecond}
	svc, err := NewService(testConfig(""), sender)
	require.NoError(t, err)

	start := time.Now()
	d := svc.NotifyContact(context.Background(), testContact(), 50*time.Millisecond)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.Equal(t, StatusQueued, d.AdminNotification.Status)
	assert.Equal(t, StatusQueued, d.AutoReply.Status)

	// les envois se terminent en arrière-plan
	assert.Eventually(t, func() bool { return len(sender.messages()) == 2 }, 2*time.Second, 20*time.Millisecond)
}

func TestNotifyContactSurvivesCancel(t *testing.T) {
	sender := &recordingSender{delay: 50 * time.Millisecond}
	svc, err := NewService(testConfig(""), sender)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	svc.NotifyContact(ctx, testContact(), 0)
	cancel()

	assert.Eventually(t, func() bool { return len(sender.messages()) == 2 }, 2*time.Second, 20*time.Millisecond)
}

func TestRenderTheme(t *testing.T) {
	r, err := newRenderer("#ff5733", "Portfolio", "https://portfolio.example.com")
	require.NoError(t, err)

	html, err := r.render("auto_reply.html", emailData{
		Subject:   "Thanks",
		Title:     "Message Received!",
		Contact:   Contact{Name: "<b>Jane</b>", Message: "hi"},
		Signature: "Wasi",
	})
	require.NoError(t, err)

	assert.Contains(t, strings.ToLower(html), "#ff5733")
	assert.Contains(t, html, "Jane")
	assert.NotContains(t, html, "<b>Jane</b>")
	assert.Contains(t, html, "https://portfolio.example.com")
	assert.NotContains(t, html, "ZgotmplZ")
}
