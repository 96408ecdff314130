package platform

import (
	"strconv"
	"strings"

	"github.com/Guliveer/sysstats/internal/models"
)

// Fields of /proc/<pid>/stat following the command name, counted from the
// state field:
//
//	0 state     1 ppid     2 pgrp     3 session  4 tty_nr   5 tpgid
//	6 flags     7 minflt   8 cminflt  9 majflt  10 cmajflt 11 utime
//	12 stime   13 cutime  14 cstime  15 priority 16 nice   17 num_threads
const (
	statFieldState      = 0
	statFieldNumThreads = 17
)

// procStat is the subset of a /proc/<pid>/stat record the summaries use.
type procStat struct {
	PID     int
	Comm    string
	State   byte
	Threads uint64
}

// parseProcStat parses one /proc/<pid>/stat line. The command name runs
// from the first '(' to the last ')' since it may itself contain spaces
// and parentheses. ok is false when the record does not have the expected
// shape.
func parseProcStat(line string) (procStat, bool) {
	var st procStat

	open := strings.IndexByte(line, '(')
	closing := strings.LastIndexByte(line, ')')
	if open < 1 || closing < open {
		return st, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(line[:open]))
	if err != nil || pid < 0 {
		return st, false
	}
	st.PID = pid
	st.Comm = line[open+1 : closing]

	fields := strings.Fields(line[closing+1:])
	if len(fields) <= statFieldNumThreads {
		return st, false
	}

	state := fields[statFieldState]
	if len(state) != 1 {
		return st, false
	}
	st.State = state[0]

	threads, err := strconv.ParseInt(fields[statFieldNumThreads], 10, 64)
	if err != nil || threads < 0 {
		return st, false
	}
	st.Threads = uint64(threads)
	return st, true
}

// addProcessState increments the bucket for a /proc state letter.
// Unknown states only count toward the total.
func addProcessState(summary *models.ProcessStatusSummary, state byte) {
	summary.Total++
	switch state {
	case 'R':
		summary.Running++
	case 'S', 'D':
		summary.Sleeping++
	case 'T':
		summary.Stopped++
	case 'Z':
		summary.Zombie++
	}
}
