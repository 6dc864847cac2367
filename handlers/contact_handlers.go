package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/models"
	"portfolio/api/store"
)

type ContactStore interface {
	CreateContact(ctx context.Context, contact *models.Contact) error
	ListContacts(ctx context.Context) ([]models.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

type ContactHandlers struct {
	Contacts ContactStore
}

func NewContactHandlers(contacts ContactStore) *ContactHandlers {
	return &ContactHandlers{Contacts: contacts}
}

// Submit stores a contact-form message for the admin inbox.
func (h *ContactHandlers) Submit(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: name, email, or message", "details": err.Error()})
		return
	}

	contact := &models.Contact{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: req.Message,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Contacts.CreateContact(ctx, contact); err != nil {
		slog.Error("error storing contact message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message sent successfully"})
}

func (h *ContactHandlers) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	contacts, err := h.Contacts.ListContacts(ctx)
	if err != nil {
		slog.Error("error fetching contacts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch contacts"})
		return
	}
	c.JSON(http.StatusOK, contacts)
}

func (h *ContactHandlers) Delete(c *gin.Context) {
	id := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Contacts.DeleteContact(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
			return
		}
		slog.Error("error deleting contact", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact"})
		return
	}
	c.Status(http.StatusNoContent)
}
