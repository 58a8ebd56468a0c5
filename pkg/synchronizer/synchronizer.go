// Package synchronizer reconciles a desired link set against one target
// directory through a types.Linker.
//
// Per-entry failures are collected in the Result and never stop the rest
// of the batch. Every outcome carries the status probed after the
// operation, so callers always see the real state of the target. The one
// exception is a transport failure: once the connection to the target is
// lost, the remaining entries are recorded as failed without touching the
// linker.
package synchronizer

import (
	"context"
	stderrors "errors"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/types"
)

// Action is what the synchronizer did to one entry.
type Action string

const (
	ActionLink   Action = "link"
	ActionUnlink Action = "unlink"
)

// Outcome is the result for one link name.
type Outcome struct {
	Name       string
	SourcePath string
	Action     Action
	// Status is empty for a link skipped after a lost connection.
	Status types.LinkStatus
	Err    error
}

// OK reports whether the operation succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Result collects the outcomes of one Apply or Sync call. Removals come
// before links.
type Result struct {
	TargetDir string
	Outcomes  []Outcome

	// lost is the first transport error seen in the batch.
	lost error
}

// track remembers err when it is a transport failure.
func (r *Result) track(err error) {
	if r.lost == nil && errors.IsErrorCode(err, errors.ErrTransport) {
		r.lost = err
	}
}

// Interrupted reports whether the batch stopped calling the linker after a
// transport failure.
func (r *Result) Interrupted() bool { return r.lost != nil }

// Linked returns the names that were linked successfully, in entry order.
func (r *Result) Linked() []string {
	return r.names(ActionLink)
}

// Removed returns the names of stale links that were removed.
func (r *Result) Removed() []string {
	return r.names(ActionUnlink)
}

func (r *Result) names(action Action) []string {
	names := []string{}
	for _, o := range r.Outcomes {
		if o.Action == action && o.OK() {
			names = append(names, o.Name)
		}
	}
	return names
}

// Failed returns the outcomes that carry an error.
func (r *Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err joins every per-entry error, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return stderrors.Join(errs...)
}

// Status returns the probed status of name, or Inactive if the result has
// no outcome for it.
func (r *Result) Status(name string) types.LinkStatus {
	for i := len(r.Outcomes) - 1; i >= 0; i-- {
		if r.Outcomes[i].Name == name {
			return r.Outcomes[i].Status
		}
	}
	return types.LinkInactive
}

// Synchronizer drives a Linker.
type Synchronizer struct {
	linker types.Linker
}

// New creates a Synchronizer over linker.
func New(linker types.Linker) *Synchronizer {
	return &Synchronizer{linker: linker}
}

// Apply creates or replaces a link for every entry. Calling it twice with
// the same entries leaves the target unchanged and reports no errors.
func (s *Synchronizer) Apply(ctx context.Context, entries []types.Entry, targetDir string) *Result {
	result := &Result{TargetDir: targetDir}
	s.apply(ctx, entries, result)
	return result
}

func (s *Synchronizer) apply(ctx context.Context, entries []types.Entry, result *Result) {
	logger := logging.GetLogger("synchronizer")

	for _, e := range entries {
		if result.lost != nil {
			result.Outcomes = append(result.Outcomes, Outcome{
				Name:       e.Name,
				SourcePath: e.SourcePath,
				Action:     ActionLink,
				Err:        result.lost,
			})
			continue
		}
		err := s.linker.CreateLink(ctx, result.TargetDir, e.Name, e.SourcePath)
		result.track(err)
		var status types.LinkStatus
		if result.lost == nil {
			var perr error
			status, perr = s.linker.ProbeLinkStatus(ctx, result.TargetDir, e.Name)
			result.track(perr)
			if err == nil {
				err = perr
			}
		}
		if err != nil {
			logger.Warn().Err(err).
				Str("skill", e.Name).
				Str("target", result.TargetDir).
				Msg("failed to link skill")
		}
		result.Outcomes = append(result.Outcomes, Outcome{
			Name:       e.Name,
			SourcePath: e.SourcePath,
			Action:     ActionLink,
			Status:     status,
			Err:        err,
		})
	}
}

// Sync makes the managed links in targetDir match entries exactly: managed
// links whose name is not desired are removed, then every entry is applied.
// Direct entries are never touched. Sync fails only when the target cannot
// be listed.
func (s *Synchronizer) Sync(ctx context.Context, entries []types.Entry, targetDir string) (*Result, error) {
	logger := logging.GetLogger("synchronizer")

	existing, err := s.linker.ListLinks(ctx, targetDir)
	if err != nil {
		return nil, err
	}

	desired := make(map[string]bool, len(entries))
	for _, e := range entries {
		desired[e.Name] = true
	}

	result := &Result{TargetDir: targetDir}
	for _, link := range existing {
		if desired[link.Name] || !link.Status.Managed() {
			continue
		}
		if result.lost != nil {
			result.Outcomes = append(result.Outcomes, Outcome{
				Name:       link.Name,
				SourcePath: link.LinkTarget,
				Action:     ActionUnlink,
				Status:     link.Status,
				Err:        result.lost,
			})
			continue
		}
		err := s.linker.RemoveLink(ctx, targetDir, link.Name)
		result.track(err)
		status := link.Status
		if result.lost == nil {
			var perr error
			status, perr = s.linker.ProbeLinkStatus(ctx, targetDir, link.Name)
			result.track(perr)
			if err == nil {
				err = perr
			}
		}
		if err != nil {
			logger.Warn().Err(err).
				Str("skill", link.Name).
				Str("target", targetDir).
				Msg("failed to remove stale link")
		} else {
			logger.Debug().Str("skill", link.Name).Str("target", targetDir).Msg("removed stale link")
		}
		result.Outcomes = append(result.Outcomes, Outcome{
			Name:       link.Name,
			SourcePath: link.LinkTarget,
			Action:     ActionUnlink,
			Status:     status,
			Err:        err,
		})
	}

	s.apply(ctx, entries, result)

	logger.Info().
		Str("target", targetDir).
		Int("linked", len(result.Linked())).
		Int("removed", len(result.Removed())).
		Int("failed", len(result.Failed())).
		Msg("synchronized target")
	return result, nil
}
