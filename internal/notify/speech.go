package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// SpeechConfig selects the local text-to-speech command.
type SpeechConfig struct {
	Command string
	Args    []string
	Timeout time.Duration
}

type commandRunner func(ctx context.Context, name string, args ...string) error

// CommandSpeaker reads text aloud by running a TTS command per call, so no
// audio resource outlives an announcement.
type CommandSpeaker struct {
	command string
	args    []string
	timeout time.Duration
	run     commandRunner
}

// NewCommandSpeaker returns a speaker using cfg, defaulting to `say` on macOS
// and `espeak` elsewhere.
func NewCommandSpeaker(cfg SpeechConfig) *CommandSpeaker {
	command := strings.TrimSpace(cfg.Command)
	if command == "" {
		command = defaultSpeechCommand(runtime.GOOS)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CommandSpeaker{
		command: command,
		args:    append([]string(nil), cfg.Args...),
		timeout: timeout,
		run:     runCommand,
	}
}

func defaultSpeechCommand(goos string) string {
	if goos == "darwin" {
		return "say"
	}
	return "espeak"
}

// Say speaks text and waits for the command to finish.
func (s *CommandSpeaker) Say(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := append(append([]string(nil), s.args...), text)
	if err := s.run(ctx, s.command, args...); err != nil {
		return fmt.Errorf("notify: speak with %s: %w", s.command, err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
