//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

// maxOutput bounds the captured terminal output; older bytes are dropped
const maxOutput = 1 << 20

var binPath = "autosearch_e2e"

const (
	KeyEnter = "\r"
	KeyCtrlC = "\x03"
	KeyCtrlO = "\x0f"
	KeyEsc   = "\x1b"
	KeyUp    = "\x1b[A"
	KeyDown  = "\x1b[B"
	KeyF1    = "\x1bOP"
	KeyQuit  = "q"
	KeyFocus = "/"
)

// Strips CSI, OSC, charset and keypad sequences plus carriage returns
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` +
		`(?:\x1b\][^\x07]*\x07)|` +
		`(?:\x1b[\(\)][A-Za-z])|` +
		`(?:\x1b=|\x1b>)|` +
		`\r`,
)

// Session runs one autosearch process inside a pseudo terminal
type Session struct {
	t         *testing.T
	pty       *os.File
	cmd       *exec.Cmd
	workspace string

	mu  sync.Mutex
	out []byte
}

// NewSession creates a session; call CreateTestWorkspace before StartApp
func NewSession(t *testing.T) *Session {
	return &Session{t: t}
}

// StartApp launches the binary with args in a 120x40 terminal
func (tf *Session) StartApp(args ...string) error {
	tf.cmd = exec.Command(binPath, args...)
	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+tf.workspace,
		"XDG_CONFIG_HOME="+tf.workspace+"/.config",
		"AUTOSEARCH_E2E_TEST=1",
	)
	tf.cmd.Dir = tf.workspace

	f, err := pty.StartWithSize(tf.cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		return fmt.Errorf("failed to start in pty: %w", err)
	}
	tf.pty = f

	go tf.capture()
	return nil
}

func (tf *Session) capture() {
	chunk := make([]byte, 8192)
	for {
		n, err := tf.pty.Read(chunk)
		if n > 0 {
			tf.mu.Lock()
			tf.out = append(tf.out, chunk[:n]...)
			if over := len(tf.out) - maxOutput; over > 0 {
				tf.out = tf.out[over:]
			}
			tf.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// SendKeys writes raw bytes to the terminal
func (tf *Session) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

// Type sends text one key at a time, like a user typing
func (tf *Session) Type(text string) error {
	tf.t.Helper()
	for _, r := range text {
		if err := tf.SendKeys(string(r)); err != nil {
			return err
		}
		time.Sleep(20 * time.Millisecond)
	}
	return nil
}

func (tf *Session) SendCtrlC() error { return tf.SendKeys(KeyCtrlC) }
func (tf *Session) PressQuit() error { return tf.SendKeys(KeyQuit) }
func (tf *Session) Quit() error      { return tf.PressQuit() }
func (tf *Session) Enter() error     { return tf.SendKeys(KeyEnter) }
func (tf *Session) Down() error      { return tf.SendKeys(KeyDown) }
func (tf *Session) Up() error        { return tf.SendKeys(KeyUp) }
func (tf *Session) Esc() error       { return tf.SendKeys(KeyEsc) }

// Ready waits for the readiness marker printed under AUTOSEARCH_E2E_TEST
func (tf *Session) Ready() bool {
	tf.t.Helper()
	return tf.OutputContains("__READY__", 5*time.Second)
}

// SeePlain waits up to 3s for text in the output with escapes removed
func (tf *Session) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.OutputContainsPlain(text, 3*time.Second)
}

func (tf *Session) OutputContains(text string, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool { return strings.Contains(s, text) }, timeout)
}

func (tf *Session) OutputContainsPlain(text string, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool {
		return strings.Contains(ansiRe.ReplaceAllString(s, ""), text)
	}, timeout)
}

// WaitFor polls the raw output until pred holds or timeout passes
func (tf *Session) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.WaitForE(pred, timeout, "") == nil
}

// WaitForE is WaitFor with an error carrying the tail of the output
func (tf *Session) WaitForE(pred func(string) bool, timeout time.Duration, failMsg string) error {
	tf.t.Helper()
	deadline := time.Now().Add(timeout)
	for !pred(tf.Snapshot()) {
		if time.Now().After(deadline) {
			tail := tf.SnapshotPlain()
			if len(tail) > 4096 {
				tail = tail[len(tail)-4096:]
			}
			return fmt.Errorf("%s\n--- tail ---\n%s", failMsg, tail)
		}
		time.Sleep(25 * time.Millisecond)
	}
	return nil
}

// Snapshot returns everything captured so far
func (tf *Session) Snapshot() string {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return string(tf.out)
}

// SnapshotPlain is Snapshot with escape sequences removed
func (tf *Session) SnapshotPlain() string {
	return ansiRe.ReplaceAllString(tf.Snapshot(), "")
}

// Cleanup closes the terminal, which hangs up the child, then kills it
func (tf *Session) Cleanup() {
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		_, _ = tf.cmd.Process.Wait()
		tf.cmd = nil
	}
}
