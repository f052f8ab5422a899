package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentversedubai-rgb/website-backend/internal/clientip"
	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/sl"
	"github.com/studentversedubai-rgb/website-backend/internal/usecase"
)

type contactUsecaser interface {
	Submit(ctx context.Context, in usecase.ContactInput) (*domain.ContactMessage, error)
}

type ContactHandler struct {
	contact contactUsecaser
	logger  *slog.Logger
}

func NewContactHandler(contact contactUsecaser, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		contact: contact,
		logger:  logger.With("component", "contact_handler"),
	}
}

type contactRequest struct {
	FirstName   string `json:"firstName"   binding:"required,max=100"`
	LastName    string `json:"lastName"    binding:"required,max=100"`
	Email       string `json:"email"       binding:"required,email,max=254"`
	Message     string `json:"message"     binding:"required,max=5000"`
	InquiryType string `json:"inquiryType" binding:"required,oneof=student_support merchant_business"`
}

// POST /api/contact/submit
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c)
		return
	}

	ctx := c.Request.Context()
	_, err := h.contact.Submit(ctx, usecase.ContactInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Message:     req.Message,
		InquiryType: domain.InquiryType(req.InquiryType),
		ClientIP:    clientip.FromContext(ctx),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "submit contact message", sl.Err(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Message submitted successfully"})
}
