package discovery

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var candidatesFound = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "printer_candidates_found",
	Help: "Printer candidates reported by discovery",
}, []string{"protocol"})

var packetsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "discovery_packets_sent",
	Help: "Discovery queries sent",
}, []string{"protocol"})

var packetsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "discovery_packets_received",
	Help: "Discovery responses received",
}, []string{"protocol"})

// Discover runs both discovery mechanisms in turn. The callback's early-stop
// signal carries across: once it returns true, no further candidates are
// delivered.
func (d *Context) Discover(ctx context.Context, cb Callback, errCB ErrorFunc) {
	done := false
	wrapped := func(c *Candidate) bool {
		done = cb != nil && cb(c)
		return done
	}
	d.DiscoverSNMP(ctx, wrapped, errCB)
	if !done && ctx.Err() == nil {
		d.DiscoverDNSSD(ctx, wrapped, errCB)
	}
}
