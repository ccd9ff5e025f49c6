// Package conflict materializes restored files onto a filesystem and
// resolves name collisions. The resolution logic is a pure state machine;
// the interactive part is a pluggable DecisionProvider so the same logic
// runs under tests, auto policies and a real terminal.
package conflict

import (
	"fmt"
	"os"
	"path"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/pkg/errors"

	"packpipe/pkg/naming"
)

// Decision is what to do about one existing target path.
type Decision int

const (
	// KeepBoth writes under a numbered candidate name.
	KeepBoth Decision = iota
	// Replace deletes the existing path and writes over it.
	Replace
	// Skip leaves the existing path alone and drops the write.
	Skip
)

func (d Decision) String() string {
	switch d {
	case Replace:
		return "replace"
	case Skip:
		return "skip"
	default:
		return "keep-both"
	}
}

// Status classifies the outcome of one write attempt.
type Status int

const (
	// StatusWritten means the path was free and written directly.
	StatusWritten Status = iota
	// StatusReplaced means an existing file was overwritten.
	StatusReplaced
	// StatusSkipped means the write was dropped; not an error.
	StatusSkipped
	// StatusRenamed means the file went to a numbered candidate.
	StatusRenamed
)

func (s Status) String() string {
	switch s {
	case StatusReplaced:
		return "replaced"
	case StatusSkipped:
		return "skipped"
	case StatusRenamed:
		return "renamed"
	default:
		return "written"
	}
}

// Outcome reports where (and whether) one file landed.
type Outcome struct {
	Path   string
	Status Status
}

// DefaultAttemptCeiling bounds the numbered-candidate search.
const DefaultAttemptCeiling = 1000

// ExhaustedError is returned when no free numbered candidate exists below
// the attempt ceiling.
type ExhaustedError struct {
	Path     string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no free name for %s after %d attempts", e.Path, e.Attempts)
}

// Resolver writes files through a DecisionProvider. The zero ceiling means
// DefaultAttemptCeiling.
type Resolver struct {
	fs       vfs.FileSystem
	provider DecisionProvider
	ceiling  int
}

// NewResolver builds a resolver over fs. provider decides conflicts; use
// NewAutoProvider(KeepBoth) for the documented non-interactive default.
func NewResolver(fs vfs.FileSystem, provider DecisionProvider) *Resolver {
	return &Resolver{fs: fs, provider: provider, ceiling: DefaultAttemptCeiling}
}

// WithCeiling overrides the numbered-candidate attempt ceiling.
func (r *Resolver) WithCeiling(n int) *Resolver {
	r.ceiling = n
	return r
}

// Write materializes data at target, consulting the provider when the path
// already exists.
func (r *Resolver) Write(target string, data []byte) (Outcome, error) {
	exists, err := vfs.FileExists(r.fs, target)
	if err != nil {
		return Outcome{}, errors.Wrapf(err, "stat %s", target)
	}
	if !exists {
		if err := r.writeFile(target, data); err != nil {
			return Outcome{}, err
		}
		return Outcome{Path: target, Status: StatusWritten}, nil
	}

	decision, err := r.provider.Decide(target)
	if err != nil {
		return Outcome{}, errors.Wrapf(err, "resolve conflict for %s", target)
	}

	switch decision {
	case Replace:
		if err := r.fs.Remove(target); err != nil {
			return Outcome{}, errors.Wrapf(err, "remove %s", target)
		}
		if err := r.writeFile(target, data); err != nil {
			return Outcome{}, err
		}
		return Outcome{Path: target, Status: StatusReplaced}, nil

	case Skip:
		return Outcome{Path: target, Status: StatusSkipped}, nil

	default: // KeepBoth
		candidate, err := r.freeCandidate(target)
		if err != nil {
			return Outcome{}, err
		}
		if err := r.writeFile(candidate, data); err != nil {
			return Outcome{}, err
		}
		return Outcome{Path: candidate, Status: StatusRenamed}, nil
	}
}

// freeCandidate numbers the file name until a free path turns up:
// report.tar.gz -> report(1).tar.gz -> report(2).tar.gz ...
func (r *Resolver) freeCandidate(target string) (string, error) {
	dir, base := path.Split(target)
	for n := 1; n <= r.ceiling; n++ {
		candidate := dir + naming.NumberedCandidate(base, n)
		exists, err := vfs.FileExists(r.fs, candidate)
		if err != nil {
			return "", errors.Wrapf(err, "stat %s", candidate)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", &ExhaustedError{Path: target, Attempts: r.ceiling}
}

func (r *Resolver) writeFile(target string, data []byte) error {
	if dir := path.Dir(target); dir != "." && dir != "/" {
		if err := r.fs.MkdirAll(dir, os.ModePerm); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}
	if err := vfs.WriteFile(r.fs, target, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", target)
	}
	return nil
}
