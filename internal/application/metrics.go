package application

import "expvar"

// metrics is published under /debug/vars as "devconnector".
var metrics = expvar.NewMap("devconnector")

const (
	metricRegistrations  = "registrations"
	metricLogins         = "logins"
	metricLikes          = "likes"
	metricComments       = "comments"
	metricUpdateRetries  = "update_retries"
	metricCascadeDeletes = "cascade_deletes"
	metricProfileUpserts = "profile_upserts"
)

// Metric returns the current value of a counter; unknown names read as zero.
func Metric(name string) int64 {
	if v, ok := metrics.Get(name).(*expvar.Int); ok {
		return v.Value()
	}
	return 0
}
