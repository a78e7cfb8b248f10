package clemail

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wasiahamad/Portfolio/internal/metrics"
	"github.com/wasiahamad/Portfolio/internal/models/cllog"
	"github.com/wasiahamad/Portfolio/internal/models/clmarkdown"
)

const (
	placeholderKey      = "xkeysib-your-api-key"
	keyPrefix           = "xkeysib-"
	defaultReplySubject = "Reply from Portfolio Admin"
)

// kinds de message, repris dans les métriques et les logs
const (
	KindContactNotification = "contact_notification"
	KindAutoReply           = "auto_reply"
	KindAdminReply          = "admin_reply"
)

type Config struct {
	APIKey      string
	APIURL      string
	SenderEmail string
	SenderName  string
	AdminEmail  string
	AdminName   string
	Timeout     time.Duration
	BrandColor  string
	SiteName    string
	SiteURL     string
}

// IsConfigured exige une clé Brevo (présente, différente de l'exemple, préfixe xkeysib-) et un expéditeur
func (c Config) IsConfigured() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != placeholderKey && strings.HasPrefix(key, keyPrefix) &&
		strings.TrimSpace(c.SenderEmail) != ""
}

type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
	StatusQueued  Status = "queued"
)

type Result struct {
	Status    Status `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Code      string `json:"code,omitempty"`
}

// Delivery est l'état des deux envois déclenchés par un message de contact
type Delivery struct {
	AdminNotification Result `json:"adminNotification"`
	AutoReply         Result `json:"autoReply"`
}

type Contact struct {
	Name      string
	Email     string
	Phone     string
	Message   string
	CreatedAt time.Time
}

type Reply struct {
	Name            string
	Email           string
	Subject         string
	Body            string
	OriginalMessage string
}

type Service struct {
	cfg      Config
	sender   Sender
	renderer *renderer
}

// NewService utilise le client Brevo si sender est nil
func NewService(cfg Config, sender Sender) (*Service, error) {
	if sender == nil {
		sender = NewBrevoClient(cfg.APIKey, cfg.APIURL, cfg.Timeout)
	}
	if cfg.SenderName == "" {
		cfg.SenderName = cfg.AdminName
	}
	if cfg.AdminEmail == "" {
		cfg.AdminEmail = cfg.SenderEmail
	}
	if cfg.AdminName == "" {
		cfg.AdminName = "Portfolio Admin"
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "Portfolio"
	}

	r, err := newRenderer(cfg.BrandColor, cfg.SiteName, cfg.SiteURL)
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:      cfg,
		sender:   sender,
		renderer: r,
	}, nil
}

func (s *Service) IsConfigured() bool {
	return s.cfg.IsConfigured()
}

// SendContactNotification prévient l'administrateur, ne retourne jamais d'erreur
func (s *Service) SendContactNotification(ctx context.Context, c Contact) Result {
	if !s.IsConfigured() {
		return s.skip(ctx, KindContactNotification)
	}

	submitted := c.CreatedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}
	subject := fmt.Sprintf("New Contact Form Submission from %s", c.Name)

	html, err := s.renderer.render("contact_notification.html", emailData{
		Subject:     subject,
		Title:       "New Contact Form Submission",
		Contact:     c,
		SubmittedAt: submitted.Format(submittedLayout),
		Signature:   s.cfg.SiteName,
	})
	if err != nil {
		return s.fail(ctx, KindContactNotification, &Error{Kind: SendFailed, Op: KindContactNotification, Recipient: s.cfg.AdminEmail, Err: err})
	}

	msg := &Message{
		Kind:    KindContactNotification,
		From:    s.from(),
		To:      []Address{{Email: s.cfg.AdminEmail, Name: s.cfg.AdminName}},
		ReplyTo: &Address{Email: c.Email, Name: c.Name},
		Subject: subject,
		HTML:    html,
		Text:    contactNotificationText(c, submitted.Format(submittedLayout)),
		Tags:    []string{KindContactNotification},
	}

	return s.deliver(ctx, msg)
}

// SendAutoReplyToUser confirme la réception au visiteur, ne retourne jamais d'erreur
func (s *Service) SendAutoReplyToUser(ctx context.Context, c Contact) Result {
	if !s.IsConfigured() {
		return s.skip(ctx, KindAutoReply)
	}

	subject := "Thank you for contacting us!"
	html, err := s.renderer.render("auto_reply.html", emailData{
		Subject:   subject,
		Title:     "Message Received!",
		Contact:   c,
		Signature: s.cfg.AdminName,
	})
	if err != nil {
		return s.fail(ctx, KindAutoReply, &Error{Kind: SendFailed, Op: KindAutoReply, Recipient: c.Email, Err: err})
	}

	msg := &Message{
		Kind:    KindAutoReply,
		From:    s.from(),
		To:      []Address{{Email: c.Email, Name: c.Name}},
		ReplyTo: &Address{Email: s.cfg.AdminEmail, Name: s.cfg.AdminName},
		Subject: subject,
		HTML:    html,
		Text:    autoReplyText(c, s.cfg.AdminName),
		Tags:    []string{KindAutoReply},
	}

	return s.deliver(ctx, msg)
}

// SendAdminReply envoie la réponse de l'administrateur. Échoue immédiatement si le service n'est pas configuré.
func (s *Service) SendAdminReply(ctx context.Context, r Reply) (Result, error) {
	if !s.IsConfigured() {
		err := &Error{
			Kind:      NotConfigured,
			Op:        KindAdminReply,
			Recipient: r.Email,
			Message:   "Brevo API is not configured, set BREVO_API_KEY",
		}
		metrics.RecordEmail(KindAdminReply, string(StatusFailed), err.Kind.Code())
		cllog.Ctx(ctx).Warn().Str("component", "email").Str("to", r.Email).Msg("Réponse admin impossible, email non configuré")
		return Result{Status: StatusFailed, Code: err.Kind.Code()}, err
	}

	subject := strings.TrimSpace(r.Subject)
	if subject == "" {
		subject = defaultReplySubject
	}

	html, err := s.renderer.render("admin_reply.html", emailData{
		Subject:   subject,
		Title:     subject,
		Contact:   Contact{Name: r.Name, Email: r.Email, Message: r.OriginalMessage},
		Body:      template.HTML(clmarkdown.ConvertMarkdownToHTML(r.Body)),
		Signature: s.cfg.AdminName,
	})
	if err != nil {
		e := &Error{Kind: SendFailed, Op: KindAdminReply, Recipient: r.Email, Err: err}
		return s.fail(ctx, KindAdminReply, e), e
	}

	msg := &Message{
		Kind:    KindAdminReply,
		From:    s.from(),
		To:      []Address{{Email: r.Email, Name: r.Name}},
		ReplyTo: &Address{Email: s.cfg.AdminEmail, Name: s.cfg.AdminName},
		Subject: subject,
		HTML:    html,
		Text:    adminReplyText(r.Name, r.Body, s.cfg.AdminName),
		Tags:    []string{KindAdminReply},
	}

	id, err := s.send(ctx, msg)
	if err != nil {
		return s.fail(ctx, KindAdminReply, err), err
	}
	return s.sent(ctx, KindAdminReply, msg.recipient(), id), nil
}

// NotifyContact lance la notification admin et l'accusé de réception en parallèle,
// détachés de l'annulation de ctx. Les envois non terminés après wait sont rapportés "queued"
// et se poursuivent en arrière-plan, bornés par le timeout du client.
func (s *Service) NotifyContact(ctx context.Context, c Contact, wait time.Duration) Delivery {
	bg := context.WithoutCancel(ctx)

	adminCh := make(chan Result, 1)
	autoCh := make(chan Result, 1)
	go s.async(bg, KindContactNotification, adminCh, func() Result { return s.SendContactNotification(bg, c) })
	go s.async(bg, KindAutoReply, autoCh, func() Result { return s.SendAutoReplyToUser(bg, c) })

	d := Delivery{
		AdminNotification: Result{Status: StatusQueued},
		AutoReply:         Result{Status: StatusQueued},
	}
	if wait <= 0 {
		return d
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for adminCh != nil || autoCh != nil {
		select {
		case r := <-adminCh:
			d.AdminNotification = r
			adminCh = nil
		case r := <-autoCh:
			d.AutoReply = r
			autoCh = nil
		case <-timer.C:
			return d
		}
	}
	return d
}

func (s *Service) async(ctx context.Context, kind string, out chan<- Result, fn func() Result) {
	defer func() {
		if rec := recover(); rec != nil {
			cllog.Ctx(ctx).Error().Str("component", "email").Str("kind", kind).Interface("panic", rec).Msg("Envoi email interrompu")
			out <- Result{Status: StatusFailed, Code: KindUnknown.Code()}
		}
	}()
	out <- fn()
}

func (s *Service) deliver(ctx context.Context, msg *Message) Result {
	id, err := s.send(ctx, msg)
	if err != nil {
		return s.fail(ctx, msg.Kind, err)
	}
	return s.sent(ctx, msg.Kind, msg.recipient(), id)
}

func (s *Service) send(ctx context.Context, msg *Message) (string, error) {
	start := time.Now()
	id, err := s.sender.Send(ctx, msg)
	metrics.ObserveEmailDuration(msg.Kind, time.Since(start).Seconds())
	return id, err
}

func (s *Service) from() Address {
	return Address{Email: s.cfg.SenderEmail, Name: s.cfg.SenderName}
}

func (s *Service) skip(ctx context.Context, kind string) Result {
	metrics.RecordEmail(kind, string(StatusSkipped), NotConfigured.Code())
	cllog.Ctx(ctx).Warn().Str("component", "email").Str("kind", kind).Msg("Brevo API non configurée, envoi ignoré (BREVO_API_KEY)")
	return Result{Status: StatusSkipped, Code: NotConfigured.Code()}
}

func (s *Service) fail(ctx context.Context, kind string, err error) Result {
	code := KindOf(err).Code()
	metrics.RecordEmail(kind, string(StatusFailed), code)
	cllog.Ctx(ctx).Error().
		Err(err).
		Str("component", "email").
		Str("kind", kind).
		Str("code", code).
		Str("to", RecipientOf(err)).
		Msg("Échec envoi email")
	return Result{Status: StatusFailed, Code: code}
}

func (s *Service) sent(ctx context.Context, kind, to, id string) Result {
	metrics.RecordEmail(kind, string(StatusSent), "")
	cllog.Ctx(ctx).Info().Str("component", "email").Str("kind", kind).Str("to", to).Str("message_id", id).Msg("Email envoyé")
	return Result{Status: StatusSent, MessageID: id}
}
