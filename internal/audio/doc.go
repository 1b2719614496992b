// Package audio wraps the external processes used for playback: ffprobe to
// measure sentence files and ffplay to play them. It also owns the rotating
// buffer files the pipeline writes into and the set of live player
// processes that must be stopped on navigation.
package audio
