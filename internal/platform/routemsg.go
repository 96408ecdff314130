package platform

import "encoding/binary"

// Layout of the NET_RT_IFLIST2 records returned by the net.route sysctl on
// darwin. Each RTM_IFINFO2 message is an if_msghdr2 (with an embedded
// if_data64) followed by the sockaddr_dl naming the interface.
const (
	rtmIfInfo2 = 0x12

	ifmMsglenOff = 0
	ifmTypeOff   = 3
	ifmDataOff   = 32
	ifMsghdr2Len = 160

	ifiIPacketsOff = ifmDataOff + 24
	ifiIErrorsOff  = ifmDataOff + 32
	ifiOPacketsOff = ifmDataOff + 40
	ifiOErrorsOff  = ifmDataOff + 48
	ifiIBytesOff   = ifmDataOff + 64
	ifiOBytesOff   = ifmDataOff + 72
	ifiIQDropsOff  = ifmDataOff + 96

	sdlNlenOff = 5
	sdlDataOff = 8
)

// ifCounters are the traffic counters of one interface.
type ifCounters struct {
	Name      string
	RxBytes   uint64
	RxPackets uint64
	RxErrors  uint64
	RxDropped uint64
	TxBytes   uint64
	TxPackets uint64
	TxErrors  uint64
}

// parseIfList2 decodes the RTM_IFINFO2 records of buf. Other message types
// are skipped, and decoding stops at the first truncated record.
func parseIfList2(buf []byte) []ifCounters {
	order := binary.NativeEndian
	var out []ifCounters

	for off := 0; off+ifmTypeOff < len(buf); {
		msglen := int(order.Uint16(buf[off+ifmMsglenOff:]))
		if msglen == 0 || off+msglen > len(buf) {
			break
		}
		msg := buf[off : off+msglen]
		off += msglen

		if msg[ifmTypeOff] != rtmIfInfo2 || len(msg) < ifMsghdr2Len+sdlDataOff {
			continue
		}

		sdl := msg[ifMsghdr2Len:]
		nlen := int(sdl[sdlNlenOff])
		if sdlDataOff+nlen > len(sdl) {
			continue
		}

		out = append(out, ifCounters{
			Name:      string(sdl[sdlDataOff : sdlDataOff+nlen]),
			RxBytes:   order.Uint64(msg[ifiIBytesOff:]),
			RxPackets: order.Uint64(msg[ifiIPacketsOff:]),
			RxErrors:  order.Uint64(msg[ifiIErrorsOff:]),
			RxDropped: order.Uint64(msg[ifiIQDropsOff:]),
			TxBytes:   order.Uint64(msg[ifiOBytesOff:]),
			TxPackets: order.Uint64(msg[ifiOPacketsOff:]),
			TxErrors:  order.Uint64(msg[ifiOErrorsOff:]),
		})
	}
	return out
}

// swapUsage mirrors struct xsw_usage from the vm.swapusage sysctl.
type swapUsage struct {
	Total uint64
	Avail uint64
	Used  uint64
}

const xswUsageMinLen = 24

// parseSwapUsage decodes the leading xsu_total, xsu_avail and xsu_used fields.
func parseSwapUsage(buf []byte) (swapUsage, bool) {
	if len(buf) < xswUsageMinLen {
		return swapUsage{}, false
	}
	order := binary.NativeEndian
	return swapUsage{
		Total: order.Uint64(buf[0:]),
		Avail: order.Uint64(buf[8:]),
		Used:  order.Uint64(buf[16:]),
	}, true
}
