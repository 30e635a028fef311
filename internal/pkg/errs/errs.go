// Package errs narrows github.com/cockroachdb/errors down to the handful of
// operations this codebase needs: sentinel creation, wrapping, and marking.
package errs

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// New returns an error carrying a captured stack trace.
func New(msg string) error {
	return errors.New(msg)
}

// Wrap annotates err with msg. A nil err stays nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// Mark attaches sentinel to err so errors.Is matches either chain. Marking a
// nil err yields the sentinel itself.
func Mark(err, sentinel error) error {
	if err == nil {
		return sentinel
	}
	return errors.Mark(err, sentinel)
}

// ExtractStackLines renders the verbose form of err capped at maxLines, for
// structured log fields. maxLines <= 0 means no cap.
func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	lines := strings.Split(fmt.Sprintf("%+v", err), "\n")
	if maxLines > 0 && len(lines) > maxLines {
		return lines[:maxLines]
	}
	return lines
}
