package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	sloggin "github.com/samber/slog-gin"

	"github.com/studentversedubai-rgb/website-backend/internal/transport/http/handler"
	"github.com/studentversedubai-rgb/website-backend/internal/transport/http/middleware"
)

type Handlers struct {
	Waitlist *handler.WaitlistHandler
	Contact  *handler.ContactHandler
	Admin    *handler.AdminHandler
}

// NewRouter mounts the public API. Admin routes are only mounted when
// adminKey is set.
func NewRouter(logger *slog.Logger, h Handlers, adminKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.ClientIP())
	r.Use(middleware.Security())
	r.Use(sloggin.NewWithConfig(logger, sloggin.Config{
		WithRequestID: false,
		Filters:       []sloggin.Filter{sloggin.IgnorePath("/favicon.ico")},
	}))
	r.Use(middleware.Metrics())

	api := r.Group("/api")
	api.POST("/waitlist/join", h.Waitlist.Join)
	api.POST("/auth/verify-otp", h.Waitlist.VerifyOTP)
	api.POST("/contact/submit", h.Contact.Submit)

	if len(adminKey) > 0 && h.Admin != nil {
		admin := r.Group("/admin", middleware.AdminAuth(adminKey))
		admin.GET("/stats", h.Admin.Stats)
	}

	return r
}

// WithCORS wraps the engine so preflight requests are answered before
// gin routing.
func WithCORS(next http.Handler, allowedOrigins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}
