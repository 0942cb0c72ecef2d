// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/reader-engine/pkg/types"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool
	stdout        string
	stderr        string
	err           error

	gotName string
	gotArgs []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(_ context.Context, name string, args []string, stdout, stderr io.Writer) error {
	m.gotName = name
	m.gotArgs = args
	io.WriteString(stdout, m.stdout)
	io.WriteString(stderr, m.stderr)
	return m.err
}

func testSynthesizer(exec executor) *Synthesizer {
	s := NewSynthesizer(types.SpeechConfig{
		Python: "python3",
		Script: "scripts/tts_bridge.py",
		Voice:  "en-US-JennyNeural",
		Rate:   "+0%",
		Pitch:  "+0Hz",
	})
	s.exec = exec
	return s
}

func bridgeJSON(audio []byte) string {
	return fmt.Sprintf(`{
		"audio": %q,
		"boundaries": [
			{"offset": 1000000, "duration": 3500000, "text": "The"},
			{"offset": 5000000, "duration": 4000000, "text": "ice"}
		]
	}`, base64.StdEncoding.EncodeToString(audio))
}

func TestSynthesizeDecodesBridgeOutput(t *testing.T) {
	audio := []byte("fake-mp3-bytes")
	exec := &mockExecutor{stdout: bridgeJSON(audio)}
	s := testSynthesizer(exec)

	got, err := s.Synthesize(context.Background(), "The ice is melting.")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(got.Audio) != string(audio) {
		t.Errorf("Audio = %q, want decoded bytes", got.Audio)
	}
	if len(got.Boundaries) != 2 {
		t.Fatalf("len(Boundaries) = %d, want 2", len(got.Boundaries))
	}
	if got.Boundaries[0].Text != "The" || got.Boundaries[1].Text != "ice" {
		t.Errorf("boundary texts = %+v", got.Boundaries)
	}
	// 1,000,000 ticks of 100 ns = 100 ms.
	if got.Boundaries[0].Start() != 100*time.Millisecond {
		t.Errorf("Start() = %v, want 100ms", got.Boundaries[0].Start())
	}
	if got.Boundaries[0].Length() != 350*time.Millisecond {
		t.Errorf("Length() = %v, want 350ms", got.Boundaries[0].Length())
	}
}

func TestSynthesizePassesArguments(t *testing.T) {
	exec := &mockExecutor{stdout: bridgeJSON([]byte("x"))}
	s := testSynthesizer(exec)

	if _, err := s.Synthesize(context.Background(), "Hello there."); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if exec.gotName != "python3" {
		t.Errorf("command = %q, want python3", exec.gotName)
	}
	want := []string{
		"scripts/tts_bridge.py",
		"--text", "Hello there.",
		"--voice", "en-US-JennyNeural",
		"--rate", "+0%",
		"--pitch", "+0Hz",
	}
	if strings.Join(exec.gotArgs, " ") != strings.Join(want, " ") {
		t.Errorf("args = %v, want %v", exec.gotArgs, want)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	s := testSynthesizer(&mockExecutor{})
	if _, err := s.Synthesize(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestSynthesizeBridgeFailureIncludesStderr(t *testing.T) {
	exec := &mockExecutor{
		err:    errors.New("exit status 1"),
		stderr: "edge-tts: no audio was received",
	}
	s := testSynthesizer(exec)

	_, err := s.Synthesize(context.Background(), "Hello.")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no audio was received") {
		t.Errorf("error should carry the stderr tail, got: %v", err)
	}
}

func TestSynthesizeMalformedOutput(t *testing.T) {
	s := testSynthesizer(&mockExecutor{stdout: "not json"})
	if _, err := s.Synthesize(context.Background(), "Hello."); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSynthesizeEmptyAudio(t *testing.T) {
	s := testSynthesizer(&mockExecutor{stdout: `{"audio": "", "boundaries": []}`})
	if _, err := s.Synthesize(context.Background(), "Hello."); err == nil {
		t.Fatal("expected error for empty audio")
	}
}

func TestAvailable(t *testing.T) {
	s := testSynthesizer(&mockExecutor{availableBins: map[string]bool{"python3": true}})
	if !s.Available() {
		t.Error("Available() = false with interpreter on PATH")
	}

	s = testSynthesizer(&mockExecutor{})
	if s.Available() {
		t.Error("Available() = true with no interpreter")
	}
}
