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

const joinAccepted = "If the email is valid, a verification code has been sent"

// waitlistUsecaser is the subset of WaitlistUsecase the handler needs.
type waitlistUsecaser interface {
	Join(ctx context.Context, in usecase.JoinInput) error
	Verify(ctx context.Context, in usecase.VerifyInput) (*domain.Snapshot, error)
}

type WaitlistHandler struct {
	waitlist waitlistUsecaser
	logger   *slog.Logger
}

func NewWaitlistHandler(waitlist waitlistUsecaser, logger *slog.Logger) *WaitlistHandler {
	return &WaitlistHandler{
		waitlist: waitlist,
		logger:   logger.With("component", "waitlist_handler"),
	}
}

type joinRequest struct {
	Email        string `json:"email" binding:"required,email,max=254"`
	ReferralCode string `json:"referralCode" binding:"omitempty,max=32"`
}

// POST /api/waitlist/join
// The success body is the same whether or not the email is registered.
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c)
		return
	}

	ctx := c.Request.Context()
	err := h.waitlist.Join(ctx, usecase.JoinInput{
		Email:        req.Email,
		ReferralCode: req.ReferralCode,
		ClientIP:     clientip.FromContext(ctx),
	})
	if err != nil {
		h.logFailure(ctx, "join waitlist", err, req.Email)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": joinAccepted})
}

// otp format is checked by the engine; a malformed code reads as a wrong one
type verifyRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
	OTP   string `json:"otp" binding:"required,max=16"`
}

type verifyResponse struct {
	OK            bool   `json:"ok"`
	Action        string `json:"action"`
	ReferralCode  string `json:"referralCode"`
	Position      int    `json:"position"`
	ReferralCount int    `json:"referralCount"`
	RewardStatus  string `json:"rewardStatus"`
}

// POST /api/auth/verify-otp
func (h *WaitlistHandler) VerifyOTP(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidation(c)
		return
	}

	ctx := c.Request.Context()
	snap, err := h.waitlist.Verify(ctx, usecase.VerifyInput{
		Email:    req.Email,
		Code:     req.OTP,
		ClientIP: clientip.FromContext(ctx),
	})
	if err != nil {
		h.logFailure(ctx, "verify otp", err, req.Email)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, verifyResponse{
		OK:            true,
		Action:        string(snap.Outcome),
		ReferralCode:  snap.ReferralCode,
		Position:      snap.Position,
		ReferralCount: snap.ReferralCount,
		RewardStatus:  string(snap.RewardStatus),
	})
}

// logFailure keeps expected client outcomes out of the error log.
func (h *WaitlistHandler) logFailure(ctx context.Context, msg string, err error, email string) {
	if status, _, _ := errorStatus(err); status == http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, sl.Err(err), sl.Email(email))
		return
	}
	h.logger.DebugContext(ctx, msg, sl.Err(err), sl.Email(email))
}
