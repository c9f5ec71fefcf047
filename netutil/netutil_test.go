package netutil

import (
	"net"
	"strings"
	"testing"
)

func TestHostAndPortUnknownInterface(t *testing.T) {
	_, err := HostAndPort("definitely-not-a-real-interface-name", 1234)
	if err == nil {
		t.Fatal("expected error for unknown interface, got nil")
	}
}

func TestHostAndPortLoopback(t *testing.T) {
	ifaces, err := net.Interfaces()
	if err != nil {
		t.Skipf("cannot list interfaces: %v", err)
	}
	var loName string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			loName = iface.Name
			break
		}
	}
	if loName == "" {
		t.Skip("no loopback interface found")
	}
	hp, err := HostAndPort(loName, 4321)
	if err != nil {
		t.Fatalf("HostAndPort(%q): %v", loName, err)
	}
	if !strings.HasSuffix(hp, ":4321") {
		t.Fatalf("HostAndPort() = %q, want suffix :4321", hp)
	}
}
