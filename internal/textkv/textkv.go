// Package textkv extracts keys and values from line-oriented kernel and
// configuration files such as /proc/cpuinfo, /proc/meminfo and /etc/os-release.
package textkv

import "strings"

// whitespace is the set of characters trimmed from both ends of keys and values.
const whitespace = " \t\n\r"

// Trim removes leading and trailing spaces, tabs, newlines and carriage returns.
func Trim(s string) string {
	return strings.Trim(s, whitespace)
}

// Split cuts line at the first occurrence of sep and returns the trimmed key
// and value. ok is false when sep does not appear in the line. A value made
// only of whitespace is returned as the empty string with ok set to true.
func Split(line string, sep byte) (key, value string, ok bool) {
	i := strings.IndexByte(line, sep)
	if i < 0 {
		return "", "", false
	}
	return Trim(line[:i]), Trim(line[i+1:]), true
}

// SplitFields handles "Key: value unit" and "key value" lines where the value
// is separated by whitespace. A trailing colon on the key is dropped and the
// unit, if any, is returned separately.
func SplitFields(line string) (key, value, unit string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", "", false
	}
	key = strings.TrimSuffix(fields[0], ":")
	value = fields[1]
	if len(fields) > 2 {
		unit = fields[2]
	}
	return key, value, unit, true
}

// RemoveQuotes trims s and strips one pair of surrounding double quotes.
// The value is returned unchanged (after trimming) when the quotes are
// missing, unmatched, or the string is shorter than two characters.
func RemoveQuotes(s string) string {
	s = Trim(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// LeadingUint parses the run of decimal digits at the start of s, ignoring
// leading whitespace and anything after the digits ("32K" -> 32).
// It returns 0 when s does not start with a digit.
func LeadingUint(s string) uint64 {
	s = Trim(s)
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + uint64(c-'0')
	}
	return n
}

// ParseKeyValueFile parses KEY=VALUE content such as /etc/os-release.
// Blank lines and # comments are skipped; values keep their quotes.
func ParseKeyValueFile(content string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = Trim(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := Split(line, '=')
		if ok && key != "" {
			fields[key] = value
		}
	}
	return fields
}
