package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/googleapis/gax-go/v2"
	"github.com/spf13/cobra"

	"github.com/casavoz/casavoz/pkg/audio/pcm"
	"github.com/casavoz/casavoz/pkg/audio/playback"
	"github.com/casavoz/casavoz/pkg/live"
)

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Run a live walkthrough session from the terminal",
	Long: `Join a live walkthrough session.

Audio is read from a PCM16 mono 16kHz file (or stdin with --audio -) and
streamed as the microphone; the assistant's 24kHz reply audio is written to
the --output file. The transcript is printed when the session ends.

Examples:
  casavoz call --url ws://localhost:8787/live --space sp_123 --audio tour.pcm -o reply.pcm
  casavoz call --space sp_123 --audio - --for 2m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		space, _ := cmd.Flags().GetString("space")
		audioPath, _ := cmd.Flags().GetString("audio")
		outputPath, _ := cmd.Flags().GetString("output")
		duration, _ := cmd.Flags().GetDuration("for")
		retries, _ := cmd.Flags().GetInt("retries")
		muted, _ := cmd.Flags().GetBool("mute")

		if audioPath == "" {
			return fmt.Errorf("--audio is required")
		}

		var in io.ReadCloser
		if audioPath == "-" {
			in = io.NopCloser(os.Stdin)
		} else {
			f, err := os.Open(audioPath)
			if err != nil {
				return fmt.Errorf("open audio: %w", err)
			}
			in = f
		}

		var out *os.File
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				in.Close()
				return fmt.Errorf("create output: %w", err)
			}
			out = f
			defer out.Close()
		}

		clock := playback.WallClock()
		var writeMu sync.Mutex
		sink := playback.WriterSink(clock, func(data []byte) {
			if out == nil {
				return
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			if _, err := out.Write(data); err != nil {
				printWarn("write output: %v", err)
			}
		}, func(data []byte) time.Duration {
			return pcm.L16Mono24K.Duration(int64(len(data)))
		})

		session, err := live.NewSession(live.Config{
			URL:     url,
			SpaceID: space,
			Mic:     newFileSource(in, pcm.L16Mono16K),
			Sink:    sink,
			Clock:   clock,
			OnState: func(st live.State) {
				printInfo("session %s", st)
			},
		})
		if err != nil {
			return err
		}
		defer session.Close()
		session.SetMuted(muted)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, duration)
		defer cancel()

		redialer := &live.Redialer{
			Backoff:     gax.Backoff{Initial: 500 * time.Millisecond, Max: 10 * time.Second, Multiplier: 2},
			MaxAttempts: retries,
		}
		if err := redialer.Connect(ctx, session.Connect); err != nil {
			return fmt.Errorf("connect: %w", err)
		}

		<-ctx.Done()
		if err := session.Close(); err != nil {
			printWarn("close: %v", err)
		}

		fmt.Println(renderTranscript(session.Transcript().Utterances()))
		return nil
	},
}

func init() {
	callCmd.Flags().String("url", envOr("CASAVOZ_URL", "ws://localhost:8787/live"), "Realtime endpoint URL")
	callCmd.Flags().String("space", "", "Space (property listing) identifier")
	callCmd.Flags().String("audio", "", "PCM16 mono 16kHz input file, or - for stdin")
	callCmd.Flags().StringP("output", "o", "", "File for the assistant's PCM16 mono 24kHz audio")
	callCmd.Flags().Duration("for", time.Minute, "Session duration")
	callCmd.Flags().Int("retries", 3, "Connect attempts before giving up")
	callCmd.Flags().Bool("mute", false, "Start with the microphone muted")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
