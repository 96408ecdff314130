package platform

import (
	"context"
	"net"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/Guliveer/sysstats/internal/models"
)

// ifAddr is one IPv4 address assigned to an interface.
type ifAddr struct {
	Name string
	IP   string
}

// listIPv4Addrs returns the IPv4 addresses of every interface in
// enumeration order. Interfaces without IPv4 addresses are omitted.
func listIPv4Addrs(ctx context.Context) ([]ifAddr, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	var out []ifAddr
	for _, iface := range ifaces {
		for _, a := range iface.Addrs {
			if ip := ipv4String(a.Addr); ip != "" {
				out = append(out, ifAddr{Name: iface.Name, IP: ip})
			}
		}
	}
	return out, nil
}

// ipv4String accepts "a.b.c.d" or "a.b.c.d/nn" and returns the dotted
// address, or "" for IPv6 and unparsable input.
func ipv4String(addr string) string {
	host, _, _ := strings.Cut(addr, "/")
	ip := net.ParseIP(host)
	if ip == nil {
		return ""
	}
	if v4 := ip.To4(); v4 != nil && !strings.Contains(host, ":") {
		return v4.String()
	}
	return ""
}

// joinRouteCounters emits one entry per (record, address) pair in routing
// record order. Records of interfaces without an IPv4 address are dropped.
func joinRouteCounters(records []ifCounters, addrs []ifAddr) []models.NetworkInterfaceEntry {
	var entries []models.NetworkInterfaceEntry
	for _, rec := range records {
		for _, a := range addrs {
			if a.Name != rec.Name {
				continue
			}
			entries = append(entries, models.NetworkInterfaceEntry{
				Name:      rec.Name,
				IPAddress: a.IP,
				TxBytes:   rec.TxBytes,
				TxPackets: rec.TxPackets,
				TxErrors:  rec.TxErrors,
				RxBytes:   rec.RxBytes,
				RxPackets: rec.RxPackets,
				RxErrors:  rec.RxErrors,
				RxDropped: rec.RxDropped,
			})
		}
	}
	return entries
}
