package document

import (
	"errors"

	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

var (
	// ErrInvalidRange rejects an edit whose range is inverted or lies outside
	// the buffer. The batch containing it is not applied.
	ErrInvalidRange = errors.New("invalid range")

	// ErrDesynchronized reports that the tree no longer matches the text. A
	// document that returns it is faulted and must be reopened.
	ErrDesynchronized = syntax.ErrDesynchronized

	// ErrClosed is returned for edits to a closed document.
	ErrClosed = errors.New("document is closed")
)
