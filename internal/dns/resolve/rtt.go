package resolve

import "time"

// clockGranularity is sampled once at process startup per spec §4.4:
// repeatedly sample the monotonic clock until it advances. It floors
// the RTO computation below, matching RFC 6298's G term.
var clockGranularity = measureClockGranularity()

func measureClockGranularity() time.Duration {
	start := time.Now()
	for {
		if d := time.Since(start); d > 0 {
			return d
		}
	}
}

// rttEstimator holds one resolution's RFC 6298 smoothed RTT state. It
// is local to a single resolution's StateBlock lifetime and is not
// shared across resolutions, matching the spec's "NOT shared" default.
type rttEstimator struct {
	initialized bool
	srtt        time.Duration
	rttvar      time.Duration
	rto         time.Duration
}

func newRTTEstimator(initialRTO time.Duration) *rttEstimator {
	return &rttEstimator{rto: initialRTO}
}

// update folds one measured round-trip time into the estimator per
// RFC 6298 §2: on the first sample, srtt=rtt and rttvar=rtt/2; on
// subsequent samples, the standard exponential smoothing applies.
func (e *rttEstimator) update(rtt time.Duration) {
	if !e.initialized {
		e.srtt = rtt
		e.rttvar = rtt / 2
		e.initialized = true
	} else {
		diff := e.srtt - rtt
		if diff < 0 {
			diff = -diff
		}
		e.rttvar = (e.rttvar*3 + diff) / 4
		e.srtt = (e.srtt*7 + rtt) / 8
	}
	e.rto = e.srtt + max(clockGranularity, 4*e.rttvar)
}

// backoff applies the inter-cycle RTO growth rule: rto <- min(2*rto,
// maxRetryInterval).
func (e *rttEstimator) backoff(maxRetryInterval time.Duration) {
	e.rto = min(e.rto*2, maxRetryInterval)
}
