package utils

import (
	"net"
	"net/netip"
	"strconv"
)

const DefaultHTTPPort = 80

// HostHeader renders an HTTP/1.1 Host value for host on port.
// RFC 9110 §7.2: the port is left off when it's the scheme's default, and v6 literals are
// bracketed either way.
func HostHeader(host string, port uint16) string {
	if port == DefaultHTTPPort {
		if addr, err := netip.ParseAddr(host); err == nil && addr.Is6() {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}

// ParsePort accepts a decimal TCP port, 1-65535.
func ParsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, strconv.ErrRange
	}
	return uint16(n), nil
}
