// Package speech requests pronunciation playback from an external command.
package speech

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/hmori/shengci/internal/model"
)

// Speaker runs a configured TTS command (e.g. "say -v Tingting" or
// "espeak-ng -v zh") with the text appended as the last argument.
type Speaker struct {
	command string
	args    []string
}

// New returns a speaker for the configured command. An empty command yields a
// disabled speaker.
func New(cfg model.SpeechConfig) *Speaker {
	return &Speaker{command: cfg.Command, args: cfg.Args}
}

// Enabled reports whether a command is configured.
func (s *Speaker) Enabled() bool {
	return s != nil && s.command != ""
}

// Speak starts playback and returns immediately. The engine never waits on or
// coordinates with the player; failures are logged and ignored.
func (s *Speaker) Speak(text string) {
	if !s.Enabled() || text == "" {
		return
	}
	args := make([]string, 0, len(s.args)+1)
	args = append(args, s.args...)
	args = append(args, text)
	cmd := exec.Command(s.command, args...)
	if err := cmd.Start(); err != nil {
		logErrf("failed to start speech command: %v\n", err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			// Best-effort playback.
			_ = err
		}
	}()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
