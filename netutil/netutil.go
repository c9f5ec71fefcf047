// Package netutil discovers the host:port a replica should advertise as
// its own coordinates, adapting the network-interface scan that
// vimeo-leaderelection's GetSelfHostPort performs across every interface
// down to a single named one, as the lease manager's configuration
// requires.
package netutil

import (
	"fmt"
	"net"
	"os"
	"strconv"
)

// HostAndPort resolves the host:port this replica should advertise: the
// first site-local address on ifaceName, else the first non-loopback
// address on it, else a hostname-based fallback. It fails loudly if
// ifaceName does not exist.
func HostAndPort(ifaceName string, port int) (string, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return "", fmt.Errorf("netutil: network interface %q not found: %w", ifaceName, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return "", fmt.Errorf("netutil: failed to list addresses on interface %q: %w", ifaceName, err)
	}

	var candidate net.IP
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP
		if ip.IsLoopback() {
			continue
		}
		if ip.IsPrivate() {
			// Prefer the first site-local (RFC 1918 / RFC 4193)
			// address outright.
			return net.JoinHostPort(ip.String(), strconv.Itoa(port)), nil
		}
		if candidate == nil {
			candidate = ip
		}
	}
	if candidate != nil {
		return net.JoinHostPort(candidate.String(), strconv.Itoa(port)), nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("netutil: interface %q has no usable address and hostname lookup failed: %w", ifaceName, err)
	}
	return net.JoinHostPort(hostname, strconv.Itoa(port)), nil
}
