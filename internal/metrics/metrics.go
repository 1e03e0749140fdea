// Package metrics define prometheus collectors for the admission engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AdmissionsCounter counts successfully created applications.
	AdmissionsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobbridge_admissions_total",
			Help: "Total number of admitted job applications.",
		},
	)
	// CapacityRejectionsCounter counts submissions rejected because the job was full.
	CapacityRejectionsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobbridge_capacity_rejections_total",
			Help: "Total number of submissions rejected by the capacity gate.",
		},
	)
	// TransitionsCounter counts successful status transitions by target status.
	TransitionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobbridge_transitions_total",
			Help: "Total number of application status transitions.",
		},
		[]string{"status"},
	)
	// NotificationsCounter counts persisted notifications by kind.
	NotificationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobbridge_notifications_total",
			Help: "Total number of dispatched notifications.",
		},
		[]string{"kind"},
	)
	// ActiveSubscriptions tracks open realtime subscriptions.
	ActiveSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobbridge_realtime_subscriptions",
			Help: "Number of currently open realtime subscriptions.",
		},
	)
)

// Register installs every collector on the default registry. Call once at startup.
func Register() {
	prometheus.MustRegister(AdmissionsCounter)
	prometheus.MustRegister(CapacityRejectionsCounter)
	prometheus.MustRegister(TransitionsCounter)
	prometheus.MustRegister(NotificationsCounter)
	prometheus.MustRegister(ActiveSubscriptions)
}
