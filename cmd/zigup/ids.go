package main

import "strings"

// toInstallID normalizes a user-supplied VERSION argument to the
// "zig-<version>" directory-name form InstallLayout expects, for
// commands that operate on an already-installed toolchain (keep, clean,
// run) rather than resolving against a remote index.
func toInstallID(raw string) string {
	return "zig-" + strings.TrimPrefix(raw, "zig-")
}
