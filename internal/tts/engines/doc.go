// Package engines contains the speech backends: edge-tts, gTTS and Piper,
// which run external binaries, and a silent mock used for tests and demos.
// Register adds all of them to a tts.Registry.
package engines
