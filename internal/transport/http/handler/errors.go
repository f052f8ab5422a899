package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
)

const (
	errInternalServer  = "Internal server error"
	errTooManyRequests = "Too many requests"
	errInvalidOTP      = "Invalid or expired code"
	errNoPending       = "Signup session expired, please join again"
	errAccountExists   = "Account already exists"
	errBadRequest      = "Invalid request"
)

// client-facing error categories
const (
	typeRateLimited     = "RATE_LIMITED"
	typeInvalidOTP      = "INVALID_OTP"
	typeNoPendingSignup = "NO_PENDING_SIGNUP"
	typeAccountExists   = "ACCOUNT_EXISTS"
	typeValidation      = "VALIDATION_ERROR"
	typeInternal        = "INTERNAL_ERROR"
)

// errorStatus maps a usecase error to its status, category and message.
// Anything unrecognised is a 500; the detail stays in the logs.
func errorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, typeRateLimited, errTooManyRequests
	case errors.Is(err, domain.ErrInvalidOrExpired):
		return http.StatusBadRequest, typeInvalidOTP, errInvalidOTP
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusBadRequest, typeNoPendingSignup, errNoPending
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, typeAccountExists, errAccountExists
	default:
		return http.StatusInternalServerError, typeInternal, errInternalServer
	}
}

func writeError(c *gin.Context, err error) {
	status, kind, msg := errorStatus(err)
	c.JSON(status, gin.H{"ok": false, "errorType": kind, "error": msg})
}

func writeValidation(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "errorType": typeValidation, "error": errBadRequest})
}
