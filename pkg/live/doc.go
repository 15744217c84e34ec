// Package live implements the realtime conversation session for a guided
// property walkthrough: a bidirectional media pipeline that streams
// microphone audio and camera frames to an AI peer over a persistent
// WebSocket, and plays back the mixed stream of synthesized audio,
// transcript fragments and tool calls the peer sends in return.
//
// A Session owns the socket, the capture pipeline, the video frame
// dispatcher and the playback scheduler, and tears all of them down from a
// single idempotent Close:
//
//	session, err := live.NewSession(live.Config{
//	    URL:     "wss://realtime.example.com",
//	    SpaceID: spaceID,
//	    Mic:     mic,
//	    Camera:  cam,
//	    Sink:    speaker,
//	    Clock:   playback.WallClock(),
//	})
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	if err := session.Connect(ctx); err != nil {
//	    return err // device or dial failure; session stays disconnected
//	}
//
// Inbound messages are demultiplexed in field order into interruption
// signals (which flush playback immediately), transcript fragments
// (aggregated into per-speaker utterances), audio chunks (scheduled
// gaplessly) and tool-call batches (dispatched to registered handlers and
// answered in a single correlated response message).
//
// The session never reconnects on its own; Redialer layers that policy on
// top for callers that want it.
package live
