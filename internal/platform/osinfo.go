package platform

import (
	"strconv"
	"strings"

	"github.com/Guliveer/sysstats/internal/textkv"
)

// osReleaseName returns PRETTY_NAME from os-release content, falling back
// to NAME. Surrounding quotes are stripped.
func osReleaseName(content string) string {
	fields := textkv.ParseKeyValueFile(content)
	if pretty := textkv.RemoveQuotes(fields["PRETTY_NAME"]); pretty != "" {
		return pretty
	}
	return textkv.RemoveQuotes(fields["NAME"])
}

// parseFileNr returns the allocated handle count, the first field of
// /proc/sys/fs/file-nr.
func parseFileNr(content string) (uint64, bool) {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseUptime returns the whole seconds of the first field of /proc/uptime.
func parseUptime(content string) (uint64, bool) {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return 0, false
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return uint64(secs), true
}

// isPID reports whether a /proc entry name is a process id.
func isPID(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}
