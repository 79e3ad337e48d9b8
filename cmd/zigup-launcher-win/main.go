//go:build windows

// zigup-launcher-win is the source of the launcher binary that
// internal/defaultptr embeds as a template and splices a target path
// into (spec.md §4.6). Built once per release with -ldflags trimming
// disabled so the marker below survives intact in the output binary,
// then copied into internal/defaultptr/assets/launcher_template.bin.
//
// At runtime the real linked-in marker and buffer are populated by
// internal/defaultptr.WindowsPointer.Set; this source is never invoked
// by zigup itself, only by the separate build step that produces the
// template asset.
package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sys/windows"
)

// launcherMarker must match internal/defaultptr's launcherMarker
// exactly; a mismatch breaks the splice offset computed at asset-build
// time.
var launcherMarker = []byte("!!!THIS MARKS THE zig_exe_string MEMORY!!#")

// targetBuffer is populated by the splice and must stay contiguous and
// un-inlined by the linker relative to the marker above; padding it to
// the spec'd buffer length here keeps the marker-to-buffer distance
// stable across builds.
var targetBuffer [32768]byte

func main() {
	nul := bytes.IndexByte(targetBuffer[:], 0)
	if nul < 0 {
		fmt.Fprintln(os.Stderr, "zigup-launcher-win: corrupt launcher, no null terminator in target buffer")
		os.Exit(1)
	}
	target := string(targetBuffer[:nul])
	if target == "" {
		fmt.Fprintln(os.Stderr, "zigup-launcher-win: launcher has no target spliced in")
		os.Exit(1)
	}

	cmd := exec.Command(target, os.Args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "zigup-launcher-win: failed to start %s: %v\n", target, err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}()
	installConsoleCtrlHandler(cmd)

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "zigup-launcher-win: child terminated abnormally: %v\n", err)
		os.Exit(1)
	}
}

// installConsoleCtrlHandler forwards CTRL_C/CTRL_BREAK/CTRL_CLOSE
// events to the child so the child terminates before the launcher
// exits with its code, per spec.md §4.6's console-control-handler
// requirement.
func installConsoleCtrlHandler(cmd *exec.Cmd) {
	handler := func(ctrlType uint32) uintptr {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		return 1
	}
	_ = windows.SetConsoleCtrlHandler(syscall.NewCallback(handler), true)
}
