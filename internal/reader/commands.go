package reader

import "github.com/lue-reader/lue/internal/position"

type commandKind int

const (
	cmdNextSentence commandKind = iota
	cmdPrevSentence
	cmdNextParagraph
	cmdPrevParagraph
	cmdJump
	cmdJumpToMatch
	cmdScrollTo
	cmdTogglePause
	cmdSpeedUp
	cmdSpeedDown
	cmdFinish
	cmdQuit
)

type command struct {
	kind  commandKind
	pos   position.Position
	query string
}

// NextSentence moves to the next sentence.
func (c *Controller) NextSentence() { c.send(command{kind: cmdNextSentence}) }

// PrevSentence moves to the previous sentence, wrapping to the end of the
// book from the first sentence.
func (c *Controller) PrevSentence() { c.send(command{kind: cmdPrevSentence}) }

// NextParagraph moves to the first sentence of the next paragraph.
func (c *Controller) NextParagraph() { c.send(command{kind: cmdNextParagraph}) }

// PrevParagraph moves to the first sentence of the previous paragraph.
func (c *Controller) PrevParagraph() { c.send(command{kind: cmdPrevParagraph}) }

// Jump moves to pos, clamped to the book.
func (c *Controller) Jump(pos position.Position) { c.send(command{kind: cmdJump, pos: pos}) }

// JumpToMatch moves to the sentence that best matches query.
func (c *Controller) JumpToMatch(query string) { c.send(command{kind: cmdJumpToMatch, query: query}) }

// ScrollTo moves the displayed sentence without touching playback.
func (c *Controller) ScrollTo(pos position.Position) { c.send(command{kind: cmdScrollTo, pos: pos}) }

// TogglePause stops or resumes playback. Resuming restarts the current
// sentence from its beginning.
func (c *Controller) TogglePause() { c.send(command{kind: cmdTogglePause}) }

func (c *Controller) SpeedUp()   { c.send(command{kind: cmdSpeedUp}) }
func (c *Controller) SpeedDown() { c.send(command{kind: cmdSpeedDown}) }

// Finish makes Run return once playback reaches the end of the book.
func (c *Controller) Finish() { c.send(command{kind: cmdFinish}) }

// Quit stops playback and makes Run return.
func (c *Controller) Quit() { c.send(command{kind: cmdQuit}) }

func (c *Controller) send(cmd command) {
	select {
	case c.commands <- cmd:
	case <-c.done:
	}
}
