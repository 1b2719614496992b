package engines

import "github.com/lue-reader/lue/internal/tts"

// Register adds every backend in this package to r.
func Register(r *tts.Registry) error {
	for name, f := range map[string]tts.Factory{
		"edge":  NewEdge,
		"gtts":  NewGTTS,
		"piper": NewPiper,
		"mock":  NewMock,
	} {
		if err := r.Register(name, f); err != nil {
			return err
		}
	}
	return nil
}
