package handlers_contacts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wasiahamad/Portfolio/internal/metrics"
	"github.com/wasiahamad/Portfolio/internal/models/clcontacts"
	"github.com/wasiahamad/Portfolio/internal/models/clemail"
	"github.com/wasiahamad/Portfolio/internal/models/cllog"
)

// Mailer est la partie du service email utilisée par les contacts
type Mailer interface {
	NotifyContact(ctx context.Context, c clemail.Contact, wait time.Duration) clemail.Delivery
	SendAdminReply(ctx context.Context, r clemail.Reply) (clemail.Result, error)
}

type CaptchaVerifier interface {
	VerifyCaptcha(captchaID string, captchaAnswer string) error
}

type ContactsHandler struct {
	store   *clcontacts.Store
	mailer  Mailer
	captcha CaptchaVerifier
	wait    time.Duration
}

type CreateContactRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Message       string `json:"message"`
	CaptchaID     string `json:"captchaID"`
	CaptchaAnswer string `json:"captchaAnswer"`
}

type ReplyRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// NewContactsHandler, captcha nil désactive la vérification. wait borne l'attente des emails.
func NewContactsHandler(store *clcontacts.Store, mailer Mailer, captcha CaptchaVerifier, wait time.Duration) *ContactsHandler {
	return &ContactsHandler{
		store:   store,
		mailer:  mailer,
		captcha: captcha,
		wait:    wait,
	}
}

// Create enregistre le message puis déclenche notification et accusé de réception
func (h *ContactsHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	if h.captcha != nil {
		if err := h.captcha.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
	}

	contact := &clcontacts.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if err := h.store.Create(ctx, contact); err != nil {
		if errors.Is(err, clcontacts.ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		cllog.Ctx(ctx).Error().Err(err).Msg("Erreur enregistrement contact")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to send message. Please try again.",
		})
		return
	}
	metrics.RecordContactReceived()

	delivery := h.mailer.NotifyContact(ctx, clemail.Contact{
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		Message:   contact.Message,
		CreatedAt: contact.CreatedAt,
	}, h.wait)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Message sent successfully! Check your email for confirmation.",
		"id":      contact.ID,
		"email":   delivery,
	})
}

// List retourne tous les contacts, les plus récents d'abord
func (h *ContactsHandler) List(c *gin.Context) {
	contacts, err := h.store.List(c.Request.Context())
	if err != nil {
		cllog.Ctx(c.Request.Context()).Error().Err(err).Msg("Erreur lecture contacts")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contacts"})
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// Reply envoie la réponse de l'administrateur et marque le contact comme répondu
func (h *ContactsHandler) Reply(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c)
	if !ok {
		return
	}

	contact, err := h.store.Get(ctx, id)
	if errors.Is(err, clcontacts.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Contact not found"})
		return
	}
	if err != nil {
		cllog.Ctx(ctx).Error().Err(err).Uint("contact_id", id).Msg("Erreur lecture contact")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch contact"})
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Reply message is required"})
		return
	}

	_, err = h.mailer.SendAdminReply(ctx, clemail.Reply{
		Name:            contact.Name,
		Email:           contact.Email,
		Subject:         req.Subject,
		Body:            req.Message,
		OriginalMessage: contact.Message,
	})
	if err != nil {
		status, message := replyFailure(err)
		c.JSON(status, gin.H{
			"message":      message,
			"error":        clemail.KindOf(err).Code(),
			"contactEmail": contact.Email,
			"suggestion":   fmt.Sprintf("Please contact %s directly at %s.", contact.Name, contact.Email),
		})
		return
	}

	if err := h.store.MarkReplied(ctx, contact); err != nil {
		cllog.Ctx(ctx).Error().Err(err).Uint("contact_id", id).Msg("Réponse envoyée mais contact non mis à jour")
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reply sent successfully",
		"contact": contact,
	})
}

func (h *ContactsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := h.store.Delete(c.Request.Context(), id)
	if errors.Is(err, clcontacts.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Contact not found"})
		return
	}
	if err != nil {
		cllog.Ctx(c.Request.Context()).Error().Err(err).Uint("contact_id", id).Msg("Erreur suppression contact")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete contact"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contact deleted"})
}

// replyFailure traduit la famille d'erreur email en statut HTTP
func replyFailure(err error) (int, string) {
	switch clemail.KindOf(err) {
	case clemail.NotConfigured:
		return http.StatusServiceUnavailable, "Email service is not configured. Please contact the user directly."
	case clemail.Timeout:
		return http.StatusGatewayTimeout, "Email service timed out. Please try again later or contact the user directly."
	case clemail.AuthFailed:
		return http.StatusBadGateway, "Email service authentication failed. Please check the email provider credentials."
	default:
		return http.StatusBadGateway, "Failed to send the reply email. Please try again later or contact the user directly."
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
