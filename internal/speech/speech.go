// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package speech synthesizes article audio through an edge-tts bridge
// script. The script is run as a subprocess and prints a JSON document on
// stdout: base64 MP3 audio plus per-word boundaries for read-along
// highlighting.
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/pdiddy/reader-engine/pkg/types"
)

// WordBoundary marks one spoken word. Offset and Duration are in 100 ns
// ticks, the unit edge-tts reports.
type WordBoundary struct {
	Offset   int64  `json:"offset"`
	Duration int64  `json:"duration"`
	Text     string `json:"text"`
}

// Start returns the boundary offset as a duration from the audio start.
func (b WordBoundary) Start() time.Duration {
	return time.Duration(b.Offset) * 100 * time.Nanosecond
}

// Length returns how long the word is spoken.
func (b WordBoundary) Length() time.Duration {
	return time.Duration(b.Duration) * 100 * time.Nanosecond
}

// Speech is the result of one synthesis call.
type Speech struct {
	Audio      []byte
	Boundaries []WordBoundary
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// Synthesizer invokes the bridge script with a configured voice.
type Synthesizer struct {
	Python string
	Script string
	Voice  string
	Rate   string
	Pitch  string

	exec executor
}

// NewSynthesizer builds a synthesizer from config.
func NewSynthesizer(cfg types.SpeechConfig) *Synthesizer {
	return &Synthesizer{
		Python: cfg.Python,
		Script: cfg.Script,
		Voice:  cfg.Voice,
		Rate:   cfg.Rate,
		Pitch:  cfg.Pitch,
		exec:   defaultExec,
	}
}

// Available reports whether the configured interpreter is on PATH.
func (s *Synthesizer) Available() bool {
	_, err := s.exec.LookPath(s.Python)
	return err == nil
}

// Synthesize runs the bridge for the given text and returns the decoded
// audio with word boundaries. Script errors include the stderr tail.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*Speech, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is empty")
	}

	args := []string{s.Script, "--text", text, "--voice", s.Voice}
	if s.Rate != "" {
		args = append(args, "--rate", s.Rate)
	}
	if s.Pitch != "" {
		args = append(args, "--pitch", s.Pitch)
	}

	var stdout, stderr bytes.Buffer
	if err := s.exec.Run(ctx, s.Python, args, &stdout, &stderr); err != nil {
		return nil, fmt.Errorf("running speech bridge: %w%s", err, stderrTail(&stderr))
	}

	var payload bridgePayload
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		return nil, fmt.Errorf("decoding speech bridge output: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(payload.Audio)
	if err != nil {
		return nil, fmt.Errorf("decoding audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech bridge returned no audio")
	}

	return &Speech{Audio: audio, Boundaries: payload.Boundaries}, nil
}

// bridgePayload is the JSON document the bridge script prints on stdout.
type bridgePayload struct {
	Audio      string         `json:"audio"`
	Boundaries []WordBoundary `json:"boundaries"`
}

// stderrTail formats the end of the bridge's stderr for error messages.
func stderrTail(buf *bytes.Buffer) string {
	msg := strings.TrimSpace(buf.String())
	if msg == "" {
		return ""
	}
	const max = 300
	if len(msg) > max {
		msg = "..." + msg[len(msg)-max:]
	}
	return " (stderr: " + msg + ")"
}
