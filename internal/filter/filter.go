// Package filter decides which mount table entries are excluded from disk
// reporting: pseudo filesystems backed by kernel data structures and
// administrative mount points such as /proc or container overlay paths.
package filter

import (
	"regexp"

	"go.uber.org/zap"
)

const (
	// DefaultIgnoreFileSystemTypes matches virtual and pseudo filesystem types.
	DefaultIgnoreFileSystemTypes = `^(autofs|binfmt_misc|bpf|cgroup2?|configfs|debugfs|devpts|devtmpfs|fusectl|hugetlbfs|iso9660|mqueue|nsfs|overlay|proc|procfs|pstore|rpc_pipefs|securityfs|selinuxfs|squashfs|sysfs|tracefs)$`

	// DefaultIgnoreMountPoints matches system mount paths and docker layer mounts.
	DefaultIgnoreMountPoints = `^/(dev|proc|sys|run|snap|var/lib/docker/.+)($|/)`
)

// Filter holds the compiled exclusion patterns. A nil pattern never matches,
// so a pattern that failed to compile leaves every entry included.
// A Filter is immutable after construction and safe for concurrent use.
type Filter struct {
	fsTypes     *regexp.Regexp
	mountPoints *regexp.Regexp
}

// New compiles the given patterns. Empty strings select the defaults.
// Compilation errors are logged and the corresponding predicate fails open.
func New(fsTypePattern, mountPointPattern string, logger *zap.Logger) *Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fsTypePattern == "" {
		fsTypePattern = DefaultIgnoreFileSystemTypes
	}
	if mountPointPattern == "" {
		mountPointPattern = DefaultIgnoreMountPoints
	}
	return &Filter{
		fsTypes:     compile("ignore_fs_types", fsTypePattern, logger),
		mountPoints: compile("ignore_mount_points", mountPointPattern, logger),
	}
}

// Default returns a Filter built from the default patterns.
func Default() *Filter {
	return New("", "", nil)
}

func compile(name, pattern string, logger *zap.Logger) *regexp.Regexp {
	re, err := regexp.Compile(pattern)
	if err != nil {
		logger.Warn("Invalid filter pattern, nothing will be excluded",
			zap.String("filter", name),
			zap.String("pattern", pattern),
			zap.Error(err))
		return nil
	}
	return re
}

// IgnoreFileSystemType reports whether fsType is a pseudo filesystem.
func (f *Filter) IgnoreFileSystemType(fsType string) bool {
	if f == nil || f.fsTypes == nil {
		return false
	}
	return f.fsTypes.MatchString(fsType)
}

// IgnoreMountPoint reports whether the mount path is administratively excluded.
func (f *Filter) IgnoreMountPoint(path string) bool {
	if f == nil || f.mountPoints == nil {
		return false
	}
	return f.mountPoints.MatchString(path)
}

// Ignore reports whether either predicate excludes the entry.
func (f *Filter) Ignore(fsType, path string) bool {
	return f.IgnoreFileSystemType(fsType) || f.IgnoreMountPoint(path)
}
