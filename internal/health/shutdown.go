package health

import "sync/atomic"

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips the readiness gate. Flipping it to false makes /health/ready
// fail immediately, which lets load balancers drain before shutdown.
func SetReady(v bool) {
	ready.Store(v)
}
