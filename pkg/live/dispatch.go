package live

import (
	"bytes"
	"image"
	"image/jpeg"
	"log/slog"
	"time"
)

// FrameSource produces camera frames for the video dispatcher.
type FrameSource interface {
	// Frame grabs the current camera image.
	Frame() (image.Image, error)
	Close() error
}

// frameLoop ticks at the configured interval for the life of the session.
// Each tick grabs a frame, JPEG-encodes it and ships it as a media chunk;
// ticks while disconnected or with the camera disabled are skipped silently.
func (s *Session) frameLoop() {
	ticker := time.NewTicker(s.cfg.FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.frameStop:
			return
		case <-ticker.C:
			s.dispatchFrame()
		}
	}
}

func (s *Session) dispatchFrame() {
	tr := s.openTransport()
	if tr == nil || !s.cameraOn.Load() {
		return
	}

	img, err := s.cfg.Camera.Frame()
	if err != nil {
		slog.Debug("live: camera frame", "err", err)
		return
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.cfg.JPEGQuality}); err != nil {
		slog.Debug("live: encoding frame", "err", err)
		return
	}

	if err := tr.sendMediaChunks(videoChunk(buf.Bytes())); err != nil {
		slog.Debug("live: dropping video frame", "err", err)
	}
}
