// Package interactive provides the interactive command-line interface
// for mdoc-sim.
package interactive

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chzyer/readline"

	"github.com/mdoc-proximity/mdoc-go/pkg/transport"
)

// Transport is the holder transport driven by the shell.
type Transport interface {
	ConnectionID() string
	State() transport.State
	Watch(ctx context.Context) <-chan transport.State
	ScanningDuration() (time.Duration, bool)
	SendMessage(ctx context.Context, msg []byte) error
	WaitForMessage(ctx context.Context) ([]byte, error)
	Close() error
}

// Session gives the shell access to the holder and the simulated reader
// without depending on the main package.
type Session interface {
	Holder() Transport
	Open(ctx context.Context) error
	ReaderSend(ctx context.Context, msg []byte) error
	ReaderReceive(ctx context.Context) ([]byte, error)
	Disconnect()
	Reset() error
}

// Settings is the subset of the settings model the shell edits.
type Settings interface {
	Keys() []string
	Snapshot() map[string]any
	SetString(ctx context.Context, key, value string) error
	Reset(ctx context.Context) error
}

// Shell handles interactive mode for mdoc-sim.
type Shell struct {
	session  Session
	settings Settings
	timeout  time.Duration
	rl       *readline.Instance

	stopWatch context.CancelFunc
}

// New creates a new shell. Blocking commands give up after timeout.
func New(session Session, settings Settings, timeout time.Duration) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mdoc> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{
		session:  session,
		settings: settings,
		timeout:  timeout,
		rl:       rl,
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	defer s.unwatch()

	s.watch(ctx)
	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "open", "o":
			s.cmdOpen(ctx)

		case "send", "s":
			s.cmdSend(ctx, args)

		case "end":
			s.cmdEnd(ctx)

		case "wait", "w":
			s.cmdWait(ctx)

		case "state", "st":
			s.cmdState()

		case "close", "c":
			s.cmdClose()

		case "rsend", "rs":
			s.cmdReaderSend(ctx, args)

		case "rrecv", "rr":
			s.cmdReaderReceive(ctx)

		case "disconnect", "dc":
			s.session.Disconnect()
			fmt.Fprintln(s.rl.Stdout(), "Reader dropped the link")

		case "reset":
			s.cmdReset(ctx)

		case "settings":
			s.cmdSettings()

		case "set":
			s.cmdSet(ctx, args)

		case "defaults":
			s.cmdDefaults(ctx)

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
mdoc-sim Commands:
  Holder:
    open               - Scan for the reader and connect
    send <text|0xhex>  - Send a message to the reader
    end                - Send the session termination marker
    wait               - Wait for a message from the reader
    state              - Show transport state
    close              - Close the transport

  Reader:
    rsend <text|0xhex> - Send a message to the holder
    rrecv              - Wait for a message from the holder
    disconnect         - Drop the link from the reader side

  Session:
    reset              - Start over with a fresh transport
    settings           - List settings
    set <key> <value>  - Change a setting (YAML value)
    defaults           - Reset all settings to defaults

  help                 - Show this help
  quit                 - Exit`)
}

// watch prints state transitions of the current transport.
func (s *Shell) watch(ctx context.Context) {
	s.unwatch()
	wctx, cancel := context.WithCancel(ctx)
	s.stopWatch = cancel

	t := s.session.Holder()
	ch := t.Watch(wctx)
	id := shortID(t.ConnectionID())
	go func() {
		for st := range ch {
			fmt.Fprintf(s.rl.Stdout(), "[%s] state -> %s\n", id, st)
		}
	}()
}

func (s *Shell) unwatch() {
	if s.stopWatch != nil {
		s.stopWatch()
		s.stopWatch = nil
	}
}

func (s *Shell) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Shell) cmdOpen(ctx context.Context) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.session.Open(ctx); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Open failed: %v\n", err)
		return
	}
	msg := "Connected"
	if d, ok := s.session.Holder().ScanningDuration(); ok {
		msg += fmt.Sprintf(" (scan took %s)", d.Round(time.Millisecond))
	}
	fmt.Fprintln(s.rl.Stdout(), msg)
}

func (s *Shell) cmdSend(ctx context.Context, args []string) {
	msg, err := parsePayload(args)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if len(msg) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: send <text|0xhex> (use 'end' to terminate)")
		return
	}
	s.holderSend(ctx, msg)
}

func (s *Shell) cmdEnd(ctx context.Context) {
	s.holderSend(ctx, nil)
}

func (s *Shell) holderSend(ctx context.Context, msg []byte) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.session.Holder().SendMessage(ctx, msg); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Send failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Sent %d bytes\n", len(msg))
}

func (s *Shell) cmdWait(ctx context.Context) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	msg, err := s.session.Holder().WaitForMessage(ctx)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Wait failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Holder received: %s\n", formatPayload(msg))
}

func (s *Shell) cmdState() {
	t := s.session.Holder()
	fmt.Fprintf(s.rl.Stdout(), "Connection: %s\n", t.ConnectionID())
	fmt.Fprintf(s.rl.Stdout(), "State:      %s\n", t.State())
	if d, ok := t.ScanningDuration(); ok {
		fmt.Fprintf(s.rl.Stdout(), "Scanning:   %s\n", d.Round(time.Millisecond))
	}
}

func (s *Shell) cmdClose() {
	if err := s.session.Holder().Close(); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Close failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "Closed")
}

func (s *Shell) cmdReaderSend(ctx context.Context, args []string) {
	msg, err := parsePayload(args)
	if err != nil || len(msg) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: rsend <text|0xhex>")
		return
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.session.ReaderSend(ctx, msg); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Reader send failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Reader sent %d bytes\n", len(msg))
}

func (s *Shell) cmdReaderReceive(ctx context.Context) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	msg, err := s.session.ReaderReceive(ctx)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Reader receive failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Reader received: %s\n", formatPayload(msg))
}

func (s *Shell) cmdReset(ctx context.Context) {
	if err := s.session.Reset(); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Reset failed: %v\n", err)
		return
	}
	s.watch(ctx)
	fmt.Fprintf(s.rl.Stdout(), "New transport %s\n", s.session.Holder().ConnectionID())
}

func (s *Shell) cmdSettings() {
	snap := s.settings.Snapshot()
	keys := s.settings.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(s.rl.Stdout(), "  %-45s %v\n", k, snap[k])
	}
}

func (s *Shell) cmdSet(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: set <key> <value>")
		return
	}
	value := strings.Join(args[1:], " ")
	if err := s.settings.SetString(ctx, args[0], value); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s = %v (applies after 'reset')\n", args[0], s.settings.Snapshot()[args[0]])
}

func (s *Shell) cmdDefaults(ctx context.Context) {
	if err := s.settings.Reset(ctx); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "Settings reset to defaults")
}

// parsePayload joins args into a message. A single 0x-prefixed argument is
// decoded as hex.
func parsePayload(args []string) ([]byte, error) {
	if len(args) == 1 && strings.HasPrefix(args[0], "0x") {
		b, err := hex.DecodeString(args[0][2:])
		if err != nil {
			return nil, fmt.Errorf("invalid hex: %w", err)
		}
		return b, nil
	}
	return []byte(strings.Join(args, " ")), nil
}

func formatPayload(msg []byte) string {
	if utf8.Valid(msg) {
		return fmt.Sprintf("%s (%d bytes)", strconv.Quote(string(msg)), len(msg))
	}
	return fmt.Sprintf("0x%x (%d bytes)", msg, len(msg))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
