package models

// ResolvedConfig holds the absolute paths zigup operates against. All
// three fields are always absolute; defaults are computed from the
// platform data directory when not set explicitly by zigup.conf or a
// command-line flag.
type ResolvedConfig struct {
	InstallDir  string // root directory holding zig-<ver>/ installs and zls-repo/
	ZigLinkPath string // default-toolchain pointer for the zig binary
	ZlsLinkPath string // default-toolchain pointer for the zls binary
}
