package session

import "errors"

var (
	// ErrRecordingActive is returned when starting while another
	// recording is in progress. At most one recording per session.
	ErrRecordingActive = errors.New("recording already active")

	// ErrNoRecording is returned when capturing or stopping without an
	// active recording.
	ErrNoRecording = errors.New("no active recording")

	// ErrRecordingTruncated reports that the session exceeded the time
	// cap and was finalized early. The captured artifact is still valid.
	ErrRecordingTruncated = errors.New("recording truncated at time cap")

	// ErrCorruptSession is returned when a loaded session is malformed:
	// out-of-order frame indices, regressing timestamps, or missing
	// identity. The whole session is rejected.
	ErrCorruptSession = errors.New("corrupt session")

	// ErrAlreadyPlaying is returned when a player is asked to play while
	// a playback is still running.
	ErrAlreadyPlaying = errors.New("playback already running")
)
