package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/studentversedubai-rgb/website-backend/internal/domain"
	"github.com/studentversedubai-rgb/website-backend/internal/transport/http/handler"
)

type fakeStats struct {
	stats domain.WaitlistStats
	err   error
}

func (f *fakeStats) Stats(context.Context) (domain.WaitlistStats, error) {
	return f.stats, f.err
}

func getStats(uc *fakeStats) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/admin/stats", handler.NewAdminHandler(uc, discard).Stats)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	return w
}

func TestAdminStats_ReturnsCounts(t *testing.T) {
	w := getStats(&fakeStats{stats: domain.WaitlistStats{Total: 7, Verified: 5, Unlocked: 1}})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(7), body["total"])
	assert.Equal(t, float64(5), body["verified"])
	assert.Equal(t, float64(1), body["unlocked"])
}

func TestAdminStats_Error_Returns500(t *testing.T) {
	w := getStats(&fakeStats{err: errors.New("db down")})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
