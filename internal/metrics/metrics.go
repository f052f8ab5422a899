package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "waitlist"

// Checker is the subset of health.Checker the metrics server exposes.
type Checker interface {
	LivenessHandler() http.Handler
	ReadinessHandler() http.Handler
}

var (
	// OTP metrics

	OTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_requests_total",
		Help:      "OTP code requests, by outcome.",
	}, []string{"outcome"})

	OTPVerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verifications_total",
		Help:      "OTP verification attempts, by internal result.",
	}, []string{"result"})

	EmailSendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "email_send_duration_seconds",
		Help:      "Time spent handing an OTP email to the provider.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"provider", "status"})

	// Rate limiting

	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by a fixed-window limiter, by scope.",
	}, []string{"scope"})

	// Waitlist

	SignupOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signup_outcomes_total",
		Help:      "Successful verifications, by terminal outcome.",
	}, []string{"outcome"})

	ReferralsCreditedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "referrals_credited_total",
		Help:      "Referral credits applied to a referrer.",
	})

	RewardsUnlockedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rewards_unlocked_total",
		Help:      "Referrers whose reward flipped to unlocked.",
	})

	WaitlistUsers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "users",
		Help:      "Waitlist users, refreshed periodically.",
	}, []string{"state"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		OTPRequestsTotal,
		OTPVerificationsTotal,
		EmailSendDuration,
		RateLimitedTotal,
		SignupOutcomesTotal,
		ReferralsCreditedTotal,
		RewardsUnlockedTotal,
		WaitlistUsers,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string, checker Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", checker.LivenessHandler())
	mux.Handle("/readyz", checker.ReadinessHandler())
	return &http.Server{Addr: addr, Handler: mux}
}
