package model

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is the submission mode.
type Mode string

const (
	// ModeSingle submits an explicit list of URLs, each analyzed independently.
	ModeSingle Mode = "single"
	// ModeCrawl submits one site root; the service discovers the pages itself.
	ModeCrawl Mode = "crawl"
)

// DefaultMode is the mode a new session starts in.
const DefaultMode = ModeSingle

// ErrInvalidMode is returned by ParseMode for unknown mode names.
var ErrInvalidMode = errors.New("invalid mode: must be single or crawl")

// ParseMode converts a mode name to a Mode. Names are case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSingle:
		return ModeSingle, nil
	case ModeCrawl:
		return ModeCrawl, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}
