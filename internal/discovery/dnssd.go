package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/printkit/netdevice/internal/ieee1284"
)

// DiscoverDNSSD browses the raw-socket printer service type and reports each
// advertised instance. Browse results arrive on the resolver's channel from
// its own goroutine; this loop is the only writer of candidate state, so the
// candidate set needs no locking. The call blocks until the candidate count
// stops growing or the ceiling elapses.
func (d *Context) DiscoverDNSSD(ctx context.Context, cb Callback, errCB ErrorFunc) error {
	ctx, cancel := context.WithTimeout(ctx, d.dnssdCeiling)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		errCB.report("Unable to create DNS-SD resolver: %v", err)
		return err
	}
	entries := make(chan *zeroconf.ServiceEntry, 16)
	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		errCB.report("Unable to browse for %s: %v", ServiceType, err)
		return err
	}

	set := newCandidateSet()
	var conv convergence
	ticker := time.NewTicker(pollWindow)
	defer ticker.Stop()

poll:
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				break poll
			}
			applyEntry(set, entry)
		case now := <-ticker.C:
			if conv.stable(set.count(), now) {
				break poll
			}
		case <-ctx.Done():
			break poll
		}
	}

	for _, c := range set.sorted() {
		c.URI = ServiceURI(c.Name, c.UUID)
		candidatesFound.WithLabelValues("dnssd").Inc()
		if cb != nil && cb(c) {
			break
		}
	}
	return nil
}

// applyEntry folds one browse event into the candidate set. The service
// instance name is the identity key: a second event for the same instance
// updates the existing record.
func applyEntry(set *candidateSet, entry *zeroconf.ServiceEntry) {
	if entry.Instance == "" {
		return
	}
	c, _ := set.lookup(entry.Instance)
	c.Name = entry.Instance

	txt := ieee1284.ParseTXT(entry.Text)
	id := ieee1284.FromTXT(txt)
	if s := id.String(); s != "" {
		c.DeviceID = s
	}
	c.Info = ieee1284.Description(id.Manufacturer, id.Model)
	if c.Info == "" {
		c.Info = entry.Instance
	}
	if uuid, ok := txt["uuid"]; ok && uuid != "" {
		c.UUID = uuid
	}
	if entry.HostName != "" {
		c.Host = entry.HostName
	}
	if len(entry.AddrIPv4) > 0 {
		c.Address = entry.AddrIPv4[0]
		c.Host = entry.AddrIPv4[0].String()
	}
	if entry.Port != 0 {
		c.Port = entry.Port
	}
}

// Resolve looks up a single service instance and returns its endpoint, for
// the device layer's dnssd: URI scheme. It waits up to timeout for the
// resolver to deliver host and port.
func Resolve(ctx context.Context, instance string, timeout time.Duration) (*Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, err
	}
	entries := make(chan *zeroconf.ServiceEntry, 4)
	if err := resolver.Lookup(ctx, instance, ServiceType, ServiceDomain, entries); err != nil {
		return nil, err
	}
	set := newCandidateSet()
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return nil, fmt.Errorf("service %q not resolved", instance)
			}
			applyEntry(set, entry)
			if c := set.get(entry.Instance); c != nil && c.Host != "" && c.Port != 0 {
				return c, nil
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("service %q not resolved: %v", instance, ctx.Err())
		}
	}
}
