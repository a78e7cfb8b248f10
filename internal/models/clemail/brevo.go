package clemail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const maxResponseBody = 64 << 10

// Sender envoie un message et retourne l'identifiant attribué par le fournisseur
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Message struct {
	Kind    string
	From    Address
	To      []Address
	ReplyTo *Address
	Subject string
	HTML    string
	Text    string
	Tags    []string
}

func (m *Message) recipient() string {
	if len(m.To) == 0 {
		return ""
	}
	return m.To[0].Email
}

// BrevoClient appelle l'API transactionnelle Brevo (POST /v3/smtp/email)
type BrevoClient struct {
	apiKey  string
	url     string
	timeout time.Duration
	client  *http.Client
}

type brevoPayload struct {
	Sender      Address   `json:"sender"`
	To          []Address `json:"to"`
	ReplyTo     *Address  `json:"replyTo,omitempty"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
	TextContent string    `json:"textContent,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func NewBrevoClient(apiKey, url string, timeout time.Duration) *BrevoClient {
	return &BrevoClient{
		apiKey:  apiKey,
		url:     url,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Send applique le délai maximal configuré quel que soit le contexte reçu
func (b *BrevoClient) Send(ctx context.Context, msg *Message) (string, error) {
	op := "brevo.send"
	recipient := msg.recipient()

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      msg.From,
		To:          msg.To,
		ReplyTo:     msg.ReplyTo,
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
		Tags:        msg.Tags,
	})
	if err != nil {
		return "", &Error{Kind: SendFailed, Op: op, Recipient: recipient, Message: "encodage du message", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: SendFailed, Op: op, Recipient: recipient, Message: "requête invalide", Err: err}
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", classifyTransport(op, recipient, b.timeout, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", classifyTransport(op, recipient, b.timeout, err)
	}

	var out brevoResponse
	_ = json.Unmarshal(data, &out)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &Error{Kind: AuthFailed, Op: op, Recipient: recipient, Message: providerMessage(resp, out)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", &Error{Kind: SendFailed, Op: op, Recipient: recipient, Message: providerMessage(resp, out)}
	}

	return out.MessageID, nil
}

func classifyTransport(op, recipient string, timeout time.Duration, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{
			Kind:      Timeout,
			Op:        op,
			Recipient: recipient,
			Message:   fmt.Sprintf("pas de réponse du fournisseur après %s", timeout),
			Err:       err,
		}
	}
	return &Error{Kind: SendFailed, Op: op, Recipient: recipient, Message: "fournisseur injoignable", Err: err}
}

// providerMessage reprend tel quel le message d'erreur du fournisseur
func providerMessage(resp *http.Response, out brevoResponse) string {
	if msg := strings.TrimSpace(out.Message); msg != "" {
		return fmt.Sprintf("Brevo API Error: %s", msg)
	}
	return fmt.Sprintf("Brevo API Error: %s", resp.Status)
}
