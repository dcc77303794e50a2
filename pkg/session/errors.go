package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

var (
	// ErrTransitionPending is returned when a navigation request arrives while
	// a section transition has not settled yet. The request is ignored.
	ErrTransitionPending = errors.New("session: section transition pending")
	// ErrFirstSection is returned by Prev on the first section.
	ErrFirstSection = errors.New("session: already on the first section")
	// ErrLastSection is returned by Next on the last section; Submit is the
	// terminal action there.
	ErrLastSection = errors.New("session: already on the last section")
	// ErrNotLastSection is returned by BeginSubmit before the last section.
	ErrNotLastSection = errors.New("session: submit is only available on the last section")
	// ErrSubmitInFlight is returned when a submission is already running.
	ErrSubmitInFlight = errors.New("session: submission already in flight")
	// ErrNoSections is returned by New for a schema without sections.
	ErrNoSections = errors.New("session: schema has no sections")
)

// ValidationError reports the fields of the active section that failed
// validation and blocked a transition or submission.
type ValidationError struct {
	Section int
	Errors  model.ErrorMap
}

func (e *ValidationError) Error() string {
	ids := make([]string, 0, len(e.Errors))
	for id := range e.Errors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("session: section %d has invalid fields: %s", e.Section, strings.Join(ids, ", "))
}

// IsValidation reports whether err carries field validation failures.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
