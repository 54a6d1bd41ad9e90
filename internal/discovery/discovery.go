// Package discovery locates network printers on the LAN. Two independent
// mechanisms feed one candidate model: an SNMP v1 broadcast sweep and DNS-SD
// service browsing. Both are synchronous calls that converge within a hard
// ceiling and deliver results through a caller callback.
package discovery

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"time"
)

// ServiceType is the DNS-SD service type raw-socket printers advertise.
const ServiceType = "_pdl-datastream._tcp"

// ServiceDomain is the DNS-SD browse domain.
const ServiceDomain = "local."

const (
	// DefaultSNMPCeiling bounds one SNMP broadcast discovery call.
	DefaultSNMPCeiling = 30 * time.Second
	// DefaultDNSSDCeiling bounds one DNS-SD discovery call.
	DefaultDNSSDCeiling = 10 * time.Second
	// DefaultCommunity is the SNMP community used for discovery queries.
	DefaultCommunity = "public"

	// pollWindow is the wait between convergence checks.
	pollWindow = 250 * time.Millisecond
	// settleTime is how long the candidate count must hold steady before a
	// discovery call ends ahead of its ceiling.
	settleTime = 2 * time.Second
)

// Candidate is a provisional printer found during one discovery call. Its
// identity key (source address for SNMP, service name for DNS-SD) is assigned
// at creation and never changes; later responses update the other fields of
// the same record.
type Candidate struct {
	// URI opens this device through the device package.
	URI string
	// Name is the display name: sysName for SNMP, the service instance
	// name for DNS-SD.
	Name string
	// Info is a human-readable make-and-model description.
	Info string
	// DeviceID is the IEEE-1284 device-ID string, retrieved or synthesized.
	DeviceID string
	// Address is the responder's address (SNMP candidates).
	Address net.IP
	// Host and Port carry the resolved endpoint for raw-socket printing.
	Host string
	Port int
	// UUID is the printer's advertised UUID, when known (DNS-SD).
	UUID string
}

// Callback receives each discovered candidate. Returning true means "found
// what I wanted" and ends the discovery call early.
type Callback func(c *Candidate) bool

// ErrorFunc receives formatted diagnostics. Discovery never writes to a log
// itself.
type ErrorFunc func(message string)

func (f ErrorFunc) report(format string, args ...any) {
	if f != nil {
		f(fmt.Sprintf(format, args...))
	}
}

// Context carries the settings shared by discovery calls. Create one with
// NewContext and pass it wherever discovery runs; there is no process-wide
// discovery state.
type Context struct {
	community    string
	snmpCeiling  time.Duration
	dnssdCeiling time.Duration
}

// Option configures a Context.
type Option func(d *Context)

func WithCommunity(community string) Option {
	return func(d *Context) { d.community = community }
}

func WithSNMPCeiling(ceiling time.Duration) Option {
	return func(d *Context) { d.snmpCeiling = ceiling }
}

func WithDNSSDCeiling(ceiling time.Duration) Option {
	return func(d *Context) { d.dnssdCeiling = ceiling }
}

func NewContext(options ...Option) *Context {
	d := &Context{
		community:    DefaultCommunity,
		snmpCeiling:  DefaultSNMPCeiling,
		dnssdCeiling: DefaultDNSSDCeiling,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Community returns the SNMP community discovery queries carry.
func (d *Context) Community() string {
	return d.community
}

// candidateSet deduplicates candidates by their identity key. It exists only
// for the duration of one discovery call; only that call's polling goroutine
// touches it.
type candidateSet struct {
	byKey map[string]*Candidate
}

func newCandidateSet() *candidateSet {
	return &candidateSet{byKey: make(map[string]*Candidate)}
}

// lookup returns the candidate for key, creating it on first sight.
func (s *candidateSet) lookup(key string) (*Candidate, bool) {
	if c, ok := s.byKey[key]; ok {
		return c, false
	}
	c := &Candidate{}
	s.byKey[key] = c
	return c, true
}

func (s *candidateSet) get(key string) *Candidate {
	return s.byKey[key]
}

func (s *candidateSet) count() int {
	return len(s.byKey)
}

// sorted returns the candidates in stable key order for the terminal
// callback loop.
func (s *candidateSet) sorted() []*Candidate {
	keys := make([]string, 0, len(s.byKey))
	for key := range s.byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]*Candidate, len(keys))
	for i, key := range keys {
		out[i] = s.byKey[key]
	}
	return out
}

// converged implements the convergence heuristic shared by both discovery
// loops: the candidate count has held steady for a full settle period.
type convergence struct {
	count int
	since time.Time
}

func (c *convergence) stable(count int, now time.Time) bool {
	if count != c.count || c.since.IsZero() {
		c.count = count
		c.since = now
		return false
	}
	return count > 0 && now.Sub(c.since) >= settleTime
}

// ServiceURI builds the dnssd: URI for a service instance, carrying the
// printer's UUID as a query parameter when known.
func ServiceURI(instance, uuid string) string {
	uri := "dnssd://" + url.PathEscape(instance) + "." + ServiceType + "." + ServiceDomain + "/"
	if uuid != "" {
		uri += "?uuid=" + url.QueryEscape(uuid)
	}
	return uri
}
