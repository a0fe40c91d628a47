package history

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dshills/textcore/internal/engine/buffer"
)

// Errors returned by command execution.
var (
	// ErrStaleCommand means the buffer no longer holds the text a command
	// was built for. The buffer is left untouched.
	ErrStaleCommand = errors.New("command does not match buffer state")

	// ErrUnknownCommand is returned for a Command with an invalid Kind.
	ErrUnknownCommand = errors.New("unknown command kind")

	// ErrBatchOpen is returned by Undo and Redo while a batch is open.
	ErrBatchOpen = errors.New("batch is open")
)

// Position is an alias for buffer.Position for convenience.
type Position = buffer.Position

// Editor is the part of a buffer that commands operate on.
// *buffer.Buffer satisfies it.
type Editor interface {
	Insert(pos Position, text string) (Position, error)
	Delete(start, end Position) (string, error)
	TextRange(start, end Position) string
}

// Kind identifies the variant a Command holds.
type Kind uint8

const (
	KindInsert Kind = iota // Text inserted at Start
	KindDelete             // Text removed from [Start, End)
	KindBatch              // Children applied as one unit
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// Command is a reversible edit. It is a tagged union: Kind selects which
// fields are meaningful.
//
//   - KindInsert: Text is inserted at Start; End is the position just past
//     it.
//   - KindDelete: [Start, End) is removed; Text is the removed text.
//   - KindBatch: Children are applied in order and reversed in reverse
//     order; Name describes the batch.
type Command struct {
	Kind     Kind
	Start    Position
	End      Position
	Text     string
	Children []*Command
	Name     string

	// coalesced marks a command produced by merging typing or deletion
	// steps, which may keep absorbing single-rune steps.
	coalesced bool
}

// NewInsert creates a command that inserts text at pos.
func NewInsert(pos Position, text string) *Command {
	text = buffer.NormalizeLineEndings(text)
	return &Command{
		Kind:  KindInsert,
		Start: pos,
		End:   buffer.EndOf(pos, text),
		Text:  text,
	}
}

// NewDelete creates a command that removes [start, end). deleted is the
// text expected in that range; when empty, Execute captures it from the
// buffer.
func NewDelete(start, end Position, deleted string) *Command {
	return &Command{
		Kind:  KindDelete,
		Start: start,
		End:   end,
		Text:  buffer.NormalizeLineEndings(deleted),
	}
}

// NewBatch creates a command that applies cmds as one unit.
func NewBatch(name string, cmds ...*Command) *Command {
	return &Command{
		Kind:     KindBatch,
		Name:     name,
		Children: cmds,
	}
}

// Execute applies the command and returns the caret position afterwards:
// the end of inserted text, the start of a deletion, or the position from
// the last child of a batch.
func (c *Command) Execute(ed Editor) (Position, error) {
	switch c.Kind {
	case KindInsert:
		end, err := ed.Insert(c.Start, c.Text)
		if err != nil {
			return Position{}, fmt.Errorf("insert at %s: %w", c.Start, err)
		}
		c.End = end
		return end, nil

	case KindDelete:
		if c.Text != "" {
			if err := c.verify(ed); err != nil {
				return Position{}, err
			}
		}
		deleted, err := ed.Delete(c.Start, c.End)
		if err != nil {
			return Position{}, fmt.Errorf("delete %s: %w", buffer.NewRange(c.Start, c.End), err)
		}
		c.Text = deleted
		return c.Start, nil

	case KindBatch:
		return c.applyChildren(ed, (*Command).Execute, (*Command).Undo)

	default:
		return Position{}, fmt.Errorf("%w: %d", ErrUnknownCommand, c.Kind)
	}
}

// Undo reverses the command and returns the caret position afterwards:
// the insert position for an insert, the end of the re-inserted text for
// a delete.
func (c *Command) Undo(ed Editor) (Position, error) {
	switch c.Kind {
	case KindInsert:
		if err := c.verify(ed); err != nil {
			return Position{}, err
		}
		if _, err := ed.Delete(c.Start, c.End); err != nil {
			return Position{}, fmt.Errorf("undo insert at %s: %w", c.Start, err)
		}
		return c.Start, nil

	case KindDelete:
		end, err := ed.Insert(c.Start, c.Text)
		if err != nil {
			return Position{}, fmt.Errorf("undo delete at %s: %w", c.Start, err)
		}
		return end, nil

	case KindBatch:
		return c.revertChildren(ed)

	default:
		return Position{}, fmt.Errorf("%w: %d", ErrUnknownCommand, c.Kind)
	}
}

// Redo applies the command again after Undo.
func (c *Command) Redo(ed Editor) (Position, error) {
	if c.Kind == KindBatch {
		return c.applyChildren(ed, (*Command).Redo, (*Command).Undo)
	}
	return c.Execute(ed)
}

// applyChildren runs step on every child in order. If a child fails, the
// children already applied are rolled back so the batch is all or nothing.
func (c *Command) applyChildren(ed Editor, step, rollback func(*Command, Editor) (Position, error)) (Position, error) {
	var last Position
	for i, child := range c.Children {
		pos, err := step(child, ed)
		if err != nil {
			for j := i - 1; j >= 0; j-- {
				_, _ = rollback(c.Children[j], ed)
			}
			return Position{}, fmt.Errorf("batch %q step %d: %w", c.Name, i, err)
		}
		last = pos
	}
	return last, nil
}

// revertChildren undoes every child in reverse order, re-applying the
// already reverted ones if a child fails.
func (c *Command) revertChildren(ed Editor) (Position, error) {
	var last Position
	for i := len(c.Children) - 1; i >= 0; i-- {
		pos, err := c.Children[i].Undo(ed)
		if err != nil {
			for j := i + 1; j < len(c.Children); j++ {
				_, _ = c.Children[j].Redo(ed)
			}
			return Position{}, fmt.Errorf("undo batch %q step %d: %w", c.Name, i, err)
		}
		last = pos
	}
	return last, nil
}

// verify checks that [Start, End) still holds Text.
func (c *Command) verify(ed Editor) error {
	if got := ed.TextRange(c.Start, c.End); got != c.Text {
		return fmt.Errorf("%w: %s holds %q, expected %q",
			ErrStaleCommand, buffer.NewRange(c.Start, c.End), got, c.Text)
	}
	return nil
}

// Invert returns a command that undoes c when executed.
func (c *Command) Invert() *Command {
	switch c.Kind {
	case KindInsert:
		return &Command{Kind: KindDelete, Start: c.Start, End: c.End, Text: c.Text}
	case KindDelete:
		return NewInsert(c.Start, c.Text)
	case KindBatch:
		children := make([]*Command, len(c.Children))
		for i, child := range c.Children {
			children[len(c.Children)-1-i] = child.Invert()
		}
		return NewBatch(c.Name, children...)
	default:
		return c
	}
}

// AffectedPosition returns the position to scroll to when the command is
// undone or redone: its start, or the first child's for a batch.
func (c *Command) AffectedPosition() Position {
	if c.Kind == KindBatch {
		if len(c.Children) == 0 {
			return Position{}
		}
		return c.Children[0].AffectedPosition()
	}
	return c.Start
}

// FirstLine returns the smallest logical line the command touches. Layout
// caches from that line on are stale after it is applied or reversed.
func (c *Command) FirstLine() int {
	if c.Kind != KindBatch {
		return c.Start.Line
	}
	first := -1
	for _, child := range c.Children {
		if l := child.FirstLine(); first < 0 || l < first {
			first = l
		}
	}
	if first < 0 {
		return 0
	}
	return first
}

// IsEmpty reports whether the command changes nothing.
func (c *Command) IsEmpty() bool {
	switch c.Kind {
	case KindBatch:
		for _, child := range c.Children {
			if !child.IsEmpty() {
				return false
			}
		}
		return true
	case KindInsert:
		return c.Text == ""
	default:
		return c.Start == c.End
	}
}

// Description returns a human-readable description.
func (c *Command) Description() string {
	switch c.Kind {
	case KindInsert:
		switch {
		case c.Text == "\n":
			return "Insert newline"
		case c.Text == "\t":
			return "Insert tab"
		case utf8.RuneCountInString(c.Text) == 1:
			return fmt.Sprintf("Type '%s'", c.Text)
		case utf8.RuneCountInString(c.Text) <= 20:
			return fmt.Sprintf("Insert %q", c.Text)
		default:
			return fmt.Sprintf("Insert %d characters", utf8.RuneCountInString(c.Text))
		}
	case KindDelete:
		n := utf8.RuneCountInString(c.Text)
		if n == 1 {
			return "Delete character"
		}
		return fmt.Sprintf("Delete %d characters", n)
	case KindBatch:
		if c.Name != "" {
			return c.Name
		}
		if len(c.Children) == 1 {
			return c.Children[0].Description()
		}
		return fmt.Sprintf("%d operations", len(c.Children))
	default:
		return "Unknown"
	}
}

// Info returns read-only information about the command.
func (c *Command) Info(ts time.Time) OperationInfo {
	return OperationInfo{
		Description: c.Description(),
		Kind:        c.Kind,
		Timestamp:   ts,
		Position:    c.AffectedPosition(),
		FirstLine:   c.FirstLine(),
	}
}

// CanMerge reports whether next, pushed right after c, can be folded
// into c so both undo as one step.
//
// Adjacent single-rune inserts merge, as do single-rune deletes made by
// backspacing over the preceding rune or deleting forward at the same
// position. Newlines never merge.
func (c *Command) CanMerge(next *Command) bool {
	if c.Kind != next.Kind || !c.typingStep() || !next.singleRune() {
		return false
	}
	switch c.Kind {
	case KindInsert:
		return next.Start == c.End
	case KindDelete:
		backspace := next.End == c.Start
		forward := next.Start == c.Start && c.Start.Line == c.End.Line
		return backspace || forward
	default:
		return false
	}
}

// Merge returns the command equivalent to c followed by next, or nil when
// CanMerge is false. Neither input is modified.
func (c *Command) Merge(next *Command) *Command {
	if !c.CanMerge(next) {
		return nil
	}

	switch c.Kind {
	case KindInsert:
		return &Command{
			Kind:      KindInsert,
			Start:     c.Start,
			End:       next.End,
			Text:      c.Text + next.Text,
			coalesced: true,
		}
	default:
		if next.End == c.Start {
			return &Command{
				Kind:      KindDelete,
				Start:     next.Start,
				End:       c.End,
				Text:      next.Text + c.Text,
				coalesced: true,
			}
		}
		return &Command{
			Kind:      KindDelete,
			Start:     c.Start,
			End:       Position{Line: c.End.Line, Col: c.End.Col + 1},
			Text:      c.Text + next.Text,
			coalesced: true,
		}
	}
}

func (c *Command) singleRune() bool {
	return utf8.RuneCountInString(c.Text) == 1 && c.Text != "\n"
}

func (c *Command) typingStep() bool {
	return c.singleRune() || c.coalesced
}
