package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/casavoz/casavoz/pkg/audio/pcm"
	"github.com/casavoz/casavoz/pkg/live"
)

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

func printInfo(format string, args ...any) {
	fmt.Fprintln(os.Stderr, dimStyle.Render(fmt.Sprintf(format, args...)))
}

func printWarn(format string, args ...any) {
	fmt.Fprintln(os.Stderr, "Warning: "+fmt.Sprintf(format, args...))
}

// renderTranscript formats the conversation with per-speaker styling.
func renderTranscript(utterances []live.Utterance) string {
	if len(utterances) == 0 {
		return dimStyle.Render("(no transcript)")
	}
	var sb strings.Builder
	for _, u := range utterances {
		style := userStyle
		if u.Role == live.RoleAssistant {
			style = assistantStyle
		}
		sb.WriteString(dimStyle.Render(u.Time.Format("15:04:05")))
		sb.WriteString(" ")
		sb.WriteString(style.Render(string(u.Role) + ":"))
		sb.WriteString(" ")
		sb.WriteString(u.Text)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// fileSource adapts a PCM16 byte stream into a paced microphone source.
// Blocks are released at real-time rate so the session behaves like a live
// call even when fed from a file.
type fileSource struct {
	r      io.ReadCloser
	format pcm.Format
	block  time.Duration
	done   chan struct{}
	once   sync.Once
}

func newFileSource(r io.ReadCloser, format pcm.Format) *fileSource {
	return &fileSource{
		r:      r,
		format: format,
		block:  20 * time.Millisecond,
		done:   make(chan struct{}),
	}
}

func (s *fileSource) ReadBlock() ([]float32, error) {
	select {
	case <-s.done:
		return nil, io.EOF
	default:
	}

	buf := make([]byte, s.format.BytesInDuration(s.block))
	n, err := io.ReadFull(s.r, buf)
	if n < 2 {
		if err == nil {
			err = io.EOF
		} else if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return nil, err
	}

	select {
	case <-time.After(s.block):
	case <-s.done:
		return nil, io.EOF
	}
	return pcm.DecodeFloat32(buf[:n-n%2]), nil
}

func (s *fileSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.r.Close()
	})
	return err
}
