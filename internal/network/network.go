// Package network models the connectivity signal the sync engine consumes
// and provides a dial-based probe for callers that need to produce one.
// Only Connected gates engine behavior; Known and Type are informational.
package network

import (
	"context"
	"net"
	"strings"
	"time"
)

// Status is a point-in-time connectivity observation, passed per Sync call.
type Status struct {
	Connected bool
	Known     bool
	Type      string
}

// Online returns a Status asserting connectivity without probing. Useful
// for tests and for CLI callers that want to force a cycle.
func Online() Status {
	return Status{Connected: true, Known: false, Type: "assumed"}
}

// Offline returns a Status asserting no connectivity.
func Offline() Status {
	return Status{Connected: false, Known: false, Type: "assumed"}
}

const defaultProbeTimeout = 3 * time.Second

// Probe checks reachability of a TCP target.
type Probe struct {
	target  string
	timeout time.Duration
}

// NewProbe builds a Probe for a host:port target.
func NewProbe(target string, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Probe{target: strings.TrimSpace(target), timeout: timeout}
}

// Check dials the target once and reports the observed connectivity.
func (p *Probe) Check(ctx context.Context) Status {
	if p == nil || p.target == "" {
		return Status{Connected: false, Known: false, Type: "tcp"}
	}
	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", p.target)
	if err != nil {
		return Status{Connected: false, Known: true, Type: "tcp"}
	}
	_ = conn.Close()
	return Status{Connected: true, Known: true, Type: "tcp"}
}
