//go:build windows

package defaultptr

import (
	"bytes"
	_ "embed"
	"os"

	"github.com/pkg/errors"

	"github.com/zigup/zigup/internal/layout"
)

// launcherTemplate is the prebuilt launcher payload described in
// spec.md §4.6 "Windows-style launcher": a fixed marker followed by a
// null-terminated buffer sized to hold an absolute path. The bytes
// before the marker stand in for the launcher's own machine code
// (cmd/zigup-launcher-win, built and embedded here by a release step
// outside this package's scope); everything this package does is the
// marker-splice logic the spec actually specifies, which operates
// identically regardless of what precedes the marker.
//
//go:embed assets/launcher_template.bin
var launcherTemplate []byte

var launcherMarker = []byte("!!!THIS MARKS THE zig_exe_string MEMORY!!#")

const launcherBufferLen = 32768

var markerEnd int

func init() {
	idx := bytes.Index(launcherTemplate, launcherMarker)
	if idx < 0 {
		panic("defaultptr: launcher template is missing its marker")
	}
	if bytes.Index(launcherTemplate[idx+1:], launcherMarker) >= 0 {
		panic("defaultptr: launcher template contains more than one marker")
	}
	markerEnd = idx + len(launcherMarker)
}

// WindowsPointer implements Pointer by splicing a target path into the
// embedded launcher template, per spec.md §4.6.
type WindowsPointer struct{}

// New constructs the platform Pointer implementation.
func New() Pointer { return WindowsPointer{} }

func (WindowsPointer) Set(path, target string) error {
	if len(target)+1 > launcherBufferLen {
		return errors.Wrapf(ErrPointerWriteFail, "target path exceeds launcher buffer: %s", target)
	}

	buf := make([]byte, launcherBufferLen)
	copy(buf, target)

	payload := make([]byte, 0, markerEnd+launcherBufferLen)
	payload = append(payload, launcherTemplate[:markerEnd]...)
	payload = append(payload, buf...)
	if suffixStart := markerEnd + launcherBufferLen; len(launcherTemplate) > suffixStart {
		payload = append(payload, launcherTemplate[suffixStart:]...)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o755); err != nil {
		return errors.Wrapf(ErrPointerWriteFail, "writing launcher payload: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(ErrPointerWriteFail, "committing launcher: %v", err)
	}
	return nil
}

func (WindowsPointer) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrPointerMissing
		}
		return "", errors.Wrapf(ErrPointerCorrupt, "reading launcher %s: %v", path, err)
	}
	if len(data) < markerEnd+launcherBufferLen {
		return "", errors.Wrapf(ErrPointerCorrupt, "launcher %s shorter than the expected buffer", path)
	}

	buf := data[markerEnd : markerEnd+launcherBufferLen]
	nul := bytes.IndexByte(buf, 0)
	if nul < 0 {
		return "", errors.Wrapf(ErrPointerCorrupt, "launcher %s has no null terminator in its buffer (truncated read)", path)
	}

	return layout.InstallPathToVersion(string(buf[:nul])), nil
}
