package shorts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchCyclesTotal counts fetch-and-filter cycles, labeled by mode and outcome.
	searchCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shorts_search_cycles_total",
		Help: "The total number of search fetch cycles executed.",
	}, []string{"mode", "status"})
	// candidatesTotal counts candidates that survived filtering.
	candidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shorts_candidates_total",
		Help: "The total number of candidates that survived filtering.",
	}, []string{"mode"})
	// metadataFailuresTotal counts popularity lookups that degraded to zero.
	metadataFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shorts_metadata_failures_total",
		Help: "The total number of failed popularity lookups.",
	})
	// upsertsTotal counts persistence attempts by outcome.
	upsertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shorts_upserts_total",
		Help: "The total number of candidate upserts attempted.",
	}, []string{"status"})
	// notificationsTotal counts downstream notify attempts by outcome.
	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shorts_notifications_total",
		Help: "The total number of downstream notifications attempted.",
	}, []string{"status"})
)
