// Package device unifies the transport schemes a network printer is reached
// through behind one handle: raw-socket data I/O plus a parallel SNMP socket
// for status and supply telemetry.
package device

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/printkit/netdevice/internal/discovery"
	"github.com/printkit/netdevice/internal/ieee1284"
	"github.com/printkit/netdevice/internal/textenc"
	"github.com/printkit/netdevice/pkg/asn1ber"
	"github.com/printkit/netdevice/pkg/snmp"
)

const (
	// DefaultPort is the conventional appsocket port.
	DefaultPort = 9100
	// openTimeout bounds connecting and URI resolution.
	openTimeout = 30 * time.Second
	// ioTimeout bounds each read or write on the data socket.
	ioTimeout = 10 * time.Second
	// statusTimeout bounds each SNMP telemetry exchange.
	statusTimeout = 5 * time.Second
)

// ErrorFunc receives formatted device diagnostics. The device layer never
// writes to a log itself.
type ErrorFunc = discovery.ErrorFunc

// Device is an open connection to one printer. Exactly one goroutine owns a
// Device at a time; it carries no locks.
type Device struct {
	uri      string
	host     string
	port     int
	addrs    []net.IP
	conn     net.Conn
	agent    *snmp.Conn
	agentTo  *net.UDPAddr
	deviceID string
	errCB    ErrorFunc

	community    string
	charset      textenc.Charset
	charsetKnown bool
	supplies     supplyTable
}

// List reports every device both discovery mechanisms can find. It returns
// true when the callback stopped the listing early.
func List(ctx context.Context, dctx *discovery.Context, cb discovery.Callback, errCB ErrorFunc) bool {
	found := false
	dctx.Discover(ctx, func(c *discovery.Candidate) bool {
		found = cb != nil && cb(c)
		return found
	}, errCB)
	return found
}

// Open connects to the device named by uri. Supported schemes:
//
//	socket://host[:port]/       host and port taken verbatim
//	snmp://host/                resolved via SNMP broadcast discovery
//	dnssd://instance...._pdl-datastream._tcp.local./  resolved via DNS-SD
//
// jobName is advisory and reported in diagnostics only. Every failure path
// releases whatever was acquired before it; Open never leaks a partially
// constructed handle.
func Open(ctx context.Context, dctx *discovery.Context, uri, jobName string, errCB ErrorFunc) (*Device, error) {
	d := &Device{
		uri:       uri,
		errCB:     errCB,
		community: dctx.Community(),
		port:      DefaultPort,
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, d.fail("Bad device URI %q: %v", uri, err)
	}
	switch u.Scheme {
	case "socket":
		d.host = u.Hostname()
		if p := u.Port(); p != "" {
			if d.port, err = strconv.Atoi(p); err != nil {
				return nil, d.fail("Bad port in device URI %q", uri)
			}
		}
	case "snmp":
		if err := d.resolveSNMP(ctx, dctx, u.Hostname()); err != nil {
			return nil, err
		}
	case "dnssd":
		if err := d.resolveDNSSD(ctx, u.Host, u.Query().Get("uuid")); err != nil {
			return nil, err
		}
	default:
		return nil, d.fail("Unsupported device URI scheme %q", u.Scheme)
	}
	if d.host == "" {
		return nil, d.fail("Device URI %q has no host", uri)
	}

	addrs, err := net.DefaultResolver.LookupIP(ctx, "ip", d.host)
	if err != nil || len(addrs) == 0 {
		return nil, d.fail("Unable to resolve %q: %v", d.host, err)
	}
	d.addrs = addrs

	dialer := net.Dialer{Timeout: openTimeout}
	for _, addr := range addrs {
		target := net.JoinHostPort(addr.String(), strconv.Itoa(d.port))
		if d.conn, err = dialer.DialContext(ctx, "tcp", target); err == nil {
			break
		}
	}
	if d.conn == nil {
		return nil, d.fail("Unable to connect to %s:%d for job %q: %v", d.host, d.port, jobName, err)
	}

	remote := d.conn.RemoteAddr().(*net.TCPAddr)
	network := "udp4"
	if remote.IP.To4() == nil {
		network = "udp6"
	}
	if d.agent, err = snmp.Open(network); err != nil {
		d.conn.Close()
		d.conn = nil
		return nil, d.fail("Unable to open status socket for %s: %v", d.host, err)
	}
	d.agentTo = &net.UDPAddr{IP: remote.IP, Port: snmp.Port}
	return d, nil
}

// resolveSNMP runs broadcast discovery and captures the endpoint of the one
// candidate whose address matches the URI host.
func (d *Device) resolveSNMP(ctx context.Context, dctx *discovery.Context, host string) error {
	ctx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()
	found := false
	dctx.DiscoverSNMP(ctx, func(c *discovery.Candidate) bool {
		if c.Address == nil || c.Address.String() != host {
			return false
		}
		found = true
		d.host, d.port = splitHostPort(c.HostPort())
		d.deviceID = c.DeviceID
		return true
	}, d.errCB)
	if !found {
		return d.fail("No SNMP printer found at %q", host)
	}
	return nil
}

// resolveDNSSD resolves the service instance named in a dnssd: URI.
func (d *Device) resolveDNSSD(ctx context.Context, host, uuid string) error {
	instance, err := url.PathUnescape(host)
	if err != nil {
		instance = host
	}
	instance = strings.TrimSuffix(instance, ".")
	instance = strings.TrimSuffix(instance, "."+discovery.ServiceType+".local")
	c, err := discovery.Resolve(ctx, instance, openTimeout)
	if err != nil {
		return d.fail("Unable to resolve %q: %v", instance, err)
	}
	if uuid != "" && c.UUID != "" && uuid != c.UUID {
		return d.fail("Service %q resolved to a different printer", instance)
	}
	d.host, d.port = splitHostPort(c.HostPort())
	d.deviceID = c.DeviceID
	return nil
}

// Close releases both sockets. Closing a closed device is an error.
func (d *Device) Close() error {
	if d.conn == nil {
		return fmt.Errorf("device already closed")
	}
	err := d.conn.Close()
	d.conn = nil
	if d.agent != nil {
		d.agent.Close()
		d.agent = nil
	}
	d.addrs = nil
	return err
}

// URI returns the URI the device was opened with.
func (d *Device) URI() string {
	return d.uri
}

// Read transfers bytes from the data socket, waiting at most the I/O bound
// for data to arrive.
func (d *Device) Read(p []byte) (int, error) {
	d.conn.SetReadDeadline(time.Now().Add(ioTimeout))
	return d.conn.Read(p)
}

// Write transfers bytes to the data socket, waiting at most the I/O bound
// for the socket to drain.
func (d *Device) Write(p []byte) (int, error) {
	d.conn.SetWriteDeadline(time.Now().Add(ioTimeout))
	return d.conn.Write(p)
}

// ID returns the IEEE-1284 device-ID string, querying the device's agent
// for it the first time when discovery did not already provide one.
func (d *Device) ID(ctx context.Context) string {
	if d.deviceID != "" {
		return d.deviceID
	}
	for _, oid := range []asn1ber.OID{
		snmp.PpmPrinterIEEE1284DeviceID,
		snmp.HPDeviceID,
		snmp.LexmarkDeviceID,
		snmp.RicohDeviceID,
	} {
		packet, err := d.agent.Get(ctx, d.agentTo, d.community, oid, statusTimeout)
		if err != nil || packet.ErrorStatus != 0 || packet.Value.Kind != asn1ber.KindOctetString {
			continue
		}
		if id := ieee1284.Normalize(string(packet.Value.Bytes)); id != "" {
			d.deviceID = id
			break
		}
	}
	return d.deviceID
}

func (d *Device) fail(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if d.errCB != nil {
		d.errCB(err.Error())
	}
	return err
}

func splitHostPort(hostport string) (string, int) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport, DefaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port == 0 {
		port = DefaultPort
	}
	return host, port
}
