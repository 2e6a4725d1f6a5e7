package filemerge

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrAbsentData is returned by AbsentFileVersion.Data; callers must check
// IsAbsent before reading content.
var ErrAbsentData = errors.New("filemerge: file version is absent, has no data")

// ErrUnknownTool is returned when an internal tool descriptor has no
// strategy implementation to dispatch to.
var ErrUnknownTool = errors.New("filemerge: unknown merge tool")

// ErrUserDeclined marks a prompt answered "unresolved"; the prompt strategy
// falls through to fail rather than raising.
var ErrUserDeclined = errors.New("filemerge: user declined to resolve conflict")

// ConfigError reports a malformed configuration value, e.g. an
// unrecognized premerge setting.
type ConfigError struct {
	Tool  string
	Key   string
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("filemerge: invalid value %q for merge-tools.%s.%s", e.Value, e.Tool, e.Key)
}

// InMemoryConflictError is raised whenever a chosen strategy cannot run
// against an in-memory working context: external tools, dump/forcedump,
// interactive prompts, and any full-merge or merge-only run that ends with
// a non-zero status.
type InMemoryConflictError struct {
	Paths  []string
	Reason string
}

func (e *InMemoryConflictError) Error() string {
	return fmt.Sprintf("filemerge: in-memory working context cannot merge %s: %s",
		strings.Join(e.Paths, ", "), e.Reason)
}

// InterventionRequiredError is raised when merge.on-failure=halt fires, or
// the user declines to continue when merge.on-failure=prompt asks.
type InterventionRequiredError struct {
	Path string
}

func (e *InterventionRequiredError) Error() string {
	return fmt.Sprintf("filemerge: merge of %q needs manual intervention", e.Path)
}

// AbortMergeToolError is raised by the abort internal strategy when its
// in-memory merge attempt leaves conflicts.
type AbortMergeToolError struct {
	Path string
}

func (e *AbortMergeToolError) Error() string {
	return fmt.Sprintf("filemerge: merge of %q aborted, conflicts remain", e.Path)
}

// RequiresInMemoryError is raised by the abort internal strategy when it is
// invoked against an on-disk working context. Unlike every other internal
// strategy, :abort only works as an in-memory dry-run probe.
type RequiresInMemoryError struct {
	Path string
}

func (e *RequiresInMemoryError) Error() string {
	return fmt.Sprintf("filemerge: tool :abort only works with in-memory merge (%q)", e.Path)
}
