package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_registrations_total",
			Help: "Total number of user registrations",
		},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"}, // success | failure | mfa_pending
	)

	mfaChallengesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_mfa_challenges_total",
			Help: "Total number of MFA codes issued",
		},
	)

	notificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_notifications_queued_total",
			Help: "Total number of notifications handed to the dispatcher",
		},
		[]string{"channel"}, // email | sms
	)

	notificationsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "account_notifications_dropped_total",
			Help: "Total number of notifications that failed to publish and were dropped",
		},
	)
)

func RecordRegistration()          { registrationsTotal.Inc() }
func RecordLogin(outcome string)   { loginsTotal.WithLabelValues(outcome).Inc() }
func RecordMFAChallenge()          { mfaChallengesTotal.Inc() }
func RecordNotification(ch string) { notificationsQueuedTotal.WithLabelValues(ch).Inc() }
func RecordNotificationDropped()   { notificationsDroppedTotal.Inc() }

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler { return promhttp.Handler() }
