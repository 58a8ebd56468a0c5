// Package toggle flips one skill's link at one target.
//
//	Inactive --link--> Active | Broken
//	Active   --unlink--> Inactive
//	Broken   --unlink--> Inactive
//	Direct   (terminal, ErrDirectLink)
//
// The returned status is always probed after the operation.
package toggle

import (
	"context"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/stats"
	"github.com/arthur-debert/skillman/pkg/types"
)

// Engine performs toggles through a Linker and reports them to a Recorder.
type Engine struct {
	linker   types.Linker
	recorder stats.Quiet
}

// New creates an Engine. recorder may be nil.
func New(linker types.Linker, recorder types.Recorder) *Engine {
	return &Engine{linker: linker, recorder: stats.Quietly(recorder)}
}

// Toggle links name to source in targetDir when currentlyActive is false,
// and unlinks it otherwise. A Broken entry is always unlinked. A Direct
// entry is left alone and ErrDirectLink is returned.
func (e *Engine) Toggle(ctx context.Context, name, source, targetDir string, currentlyActive bool) (types.LinkStatus, error) {
	logger := logging.GetLogger("toggle").With().
		Str("skill", name).
		Str("target", targetDir).
		Logger()

	current, err := e.linker.ProbeLinkStatus(ctx, targetDir, name)
	if err != nil {
		return types.LinkInactive, err
	}

	switch {
	case current == types.LinkDirect:
		return current, errors.Newf(errors.ErrDirectLink, "%s is not a managed link", name).
			WithDetail("skill", name).
			WithDetail("target", targetDir)

	case current == types.LinkBroken || currentlyActive:
		if err := e.linker.RemoveLink(ctx, targetDir, name); err != nil {
			status, _ := e.linker.ProbeLinkStatus(ctx, targetDir, name)
			return status, err
		}
		e.recorder.Toggle(name, false)
		logger.Info().Str("from", string(current)).Msg("unlinked skill")

	default:
		if ok, err := e.linker.SourceExists(ctx, source); err == nil && !ok {
			logger.Warn().Str("source", source).Msg("skill source does not exist, link will be broken")
		}
		if err := e.linker.CreateLink(ctx, targetDir, name, source); err != nil {
			status, _ := e.linker.ProbeLinkStatus(ctx, targetDir, name)
			return status, err
		}
		e.recorder.Toggle(name, true)
		logger.Info().Str("source", source).Msg("linked skill")
	}

	return e.linker.ProbeLinkStatus(ctx, targetDir, name)
}
