package clemail

import (
	"errors"
	"fmt"
)

// Kind est la famille d'échec d'un envoi, attribuée une seule fois à la frontière du fournisseur
type Kind int

const (
	KindUnknown Kind = iota
	NotConfigured
	Timeout
	AuthFailed
	SendFailed
)

func (k Kind) Code() string {
	switch k {
	case NotConfigured:
		return "EMAIL_NOT_CONFIGURED"
	case Timeout:
		return "CONNECTION_TIMEOUT"
	case AuthFailed:
		return "AUTH_FAILED"
	case SendFailed:
		return "EMAIL_SEND_FAILED"
	default:
		return "EMAIL_SERVICE_ERROR"
	}
}

func (k Kind) String() string {
	switch k {
	case NotConfigured:
		return "not_configured"
	case Timeout:
		return "timeout"
	case AuthFailed:
		return "auth_failed"
	case SendFailed:
		return "send_failed"
	default:
		return "unknown"
	}
}

// Error décrit un envoi en échec
type Error struct {
	Kind      Kind
	Op        string
	Recipient string
	Message   string
	Err       error
}

var (
	ErrNotConfigured = &Error{Kind: NotConfigured}
	ErrTimeout       = &Error{Kind: Timeout}
	ErrAuthFailed    = &Error{Kind: AuthFailed}
	ErrSendFailed    = &Error{Kind: SendFailed}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Recipient != "" {
		msg = fmt.Sprintf("%s (destinataire %s)", msg, e.Recipient)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is compare les familles, errors.Is(err, ErrTimeout) suffit côté appelant
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf retourne la famille d'une erreur d'envoi, KindUnknown sinon
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// RecipientOf retourne le destinataire porté par l'erreur
func RecipientOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Recipient
	}
	return ""
}
