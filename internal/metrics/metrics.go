package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OpSignup    = "signup"
	OpVerifyOTP = "verify_otp"
	OpSignin    = "signin"
	OpMe        = "me"
)

var (
	// authOutcomes counts auth operations by operation and result.
	authOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otpauth_operations_total",
		Help: "Total number of auth operations by outcome",
	}, []string{"op", "result"})

	// pendingSwept counts pending registrations removed by the sweep job.
	pendingSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otpauth_pending_swept_total",
		Help: "Total number of expired pending registrations removed by the sweeper",
	})

	// mailFailures counts OTP mails that could not be delivered.
	mailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otpauth_mail_failures_total",
		Help: "Total number of OTP mails that failed to send",
	})
)

func RecordOutcome(op, result string) {
	authOutcomes.WithLabelValues(op, result).Inc()
}

func RecordSwept(n int64) {
	if n > 0 {
		pendingSwept.Add(float64(n))
	}
}

func RecordMailFailure() {
	mailFailures.Inc()
}
