package remote

import (
	"context"
	stderrors "errors"
	"path"
	"strings"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/links"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/types"
)

// exitDirect is the exit status the link scripts use for a real directory
// or file sitting where a link would go.
const exitDirect = 3

// Linker implements types.Linker with shell commands.
type Linker struct {
	exec Executor
}

var _ types.Linker = (*Linker)(nil)

// NewLinker creates a Linker running its commands through exec.
func NewLinker(exec Executor) *Linker {
	return &Linker{exec: exec}
}

func directError(linkPath string) *errors.Error {
	return errors.Newf(errors.ErrDirectLink, "%s is not a symlink", linkPath).
		WithDetail("path", linkPath)
}

// CreateLink points targetDir/name at sourcePath with ln -sfn, creating
// targetDir first. A real directory or file at the link path is left alone.
func (l *Linker) CreateLink(ctx context.Context, targetDir, name, sourcePath string) error {
	if err := links.ValidateName(name); err != nil {
		return err
	}
	linkPath := path.Join(targetDir, name)
	link := QuotePath(linkPath)
	cmd := "mkdir -p " + QuotePath(targetDir) +
		" && if [ -e " + link + " ] && [ ! -L " + link + " ]; then exit 3; fi" +
		" && ln -sfn " + QuotePath(sourcePath) + " " + link

	res, err := l.exec.Run(ctx, cmd)
	if err != nil {
		return errors.Wrapf(err, errors.ErrLinkCreate, "failed to link %s", linkPath)
	}
	switch res.ExitCode {
	case 0:
		return nil
	case exitDirect:
		return errors.Wrapf(directError(linkPath), errors.ErrLinkCreate, "refusing to replace %s", linkPath)
	default:
		return commandError(errors.ErrLinkCreate, "failed to link "+linkPath, res)
	}
}

// RemoveLink removes targetDir/name if it is a symlink. A missing entry is
// not an error.
func (l *Linker) RemoveLink(ctx context.Context, targetDir, name string) error {
	if err := links.ValidateName(name); err != nil {
		return err
	}
	linkPath := path.Join(targetDir, name)
	link := QuotePath(linkPath)
	cmd := "if [ -L " + link + " ]; then rm -f " + link + "; elif [ -e " + link + " ]; then exit 3; fi"

	res, err := l.exec.Run(ctx, cmd)
	if err != nil {
		return errors.Wrapf(err, errors.ErrLinkRemove, "failed to remove %s", linkPath)
	}
	switch res.ExitCode {
	case 0:
		return nil
	case exitDirect:
		return errors.Wrapf(directError(linkPath), errors.ErrLinkRemove, "refusing to remove %s", linkPath)
	default:
		return commandError(errors.ErrLinkRemove, "failed to remove "+linkPath, res)
	}
}

// ProbeLinkStatus classifies targetDir/name.
func (l *Linker) ProbeLinkStatus(ctx context.Context, targetDir, name string) (types.LinkStatus, error) {
	linkPath := path.Join(targetDir, name)
	link := QuotePath(linkPath)
	cmd := "if [ -L " + link + " ]; then if [ -e " + link + " ]; then echo Active; else echo Broken; fi;" +
		" elif [ -e " + link + " ]; then echo Direct; else echo Inactive; fi"

	out, err := output(ctx, l.exec, errors.ErrLinkList, "failed to probe "+linkPath, cmd)
	if err != nil {
		return types.LinkInactive, err
	}
	status := types.LinkStatus(strings.TrimSpace(out))
	if !status.Valid() {
		return types.LinkInactive, errors.Newf(errors.ErrLinkList, "unexpected probe output %q for %s", out, linkPath)
	}
	return status, nil
}

const listScript = `for f in * .[!.]* ..?*; do
  if [ -L "$f" ]; then
    if [ -e "$f" ]; then s=Active; else s=Broken; fi
    printf '%s\t%s\t%s\n' "$s" "$f" "$(readlink "$f")"
  elif [ -d "$f" ]; then
    printf 'Direct\t%s\t\n' "$f"
  fi
done`

// ListLinks reports every symlink and real directory in targetDir. A
// missing directory yields an empty list.
func (l *Linker) ListLinks(ctx context.Context, targetDir string) ([]types.LinkInfo, error) {
	cmd := "cd " + QuotePath(targetDir) + " 2>/dev/null || exit 0\n" + listScript

	out, err := output(ctx, l.exec, errors.ErrLinkList, "failed to list "+targetDir, cmd)
	if err != nil {
		return nil, err
	}
	return parseLinkList(targetDir, out), nil
}

func parseLinkList(targetDir, out string) []types.LinkInfo {
	result := []types.LinkInfo{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 2 || fields[1] == "" {
			continue
		}
		info := types.LinkInfo{Name: fields[1], Status: types.LinkStatus(fields[0])}
		if !info.Status.Valid() {
			continue
		}
		if len(fields) == 3 {
			info.LinkTarget = fields[2]
		}
		if info.Status == types.LinkDirect {
			info.LinkTarget = path.Join(targetDir, info.Name)
		}
		result = append(result, info)
	}
	links.SortLinks(result)
	return result
}

// SourceExists reports whether sourcePath exists on the remote host.
func (l *Linker) SourceExists(ctx context.Context, sourcePath string) (bool, error) {
	cmd := "if [ -e " + QuotePath(sourcePath) + " ]; then echo yes; else echo no; fi"
	out, err := output(ctx, l.exec, errors.ErrLinkList, "failed to check "+sourcePath, cmd)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "yes", nil
}

// CleanBroken removes every broken symlink in targetDir, one command per
// link so a failure does not stop the sweep.
func (l *Linker) CleanBroken(ctx context.Context, targetDir string) ([]string, error) {
	found, err := l.ListLinks(ctx, targetDir)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("remote.linker")
	cleaned := []string{}
	var errs []error
	for _, link := range found {
		if link.Status != types.LinkBroken {
			continue
		}
		linkPath := path.Join(targetDir, link.Name)
		cmd := "[ -L " + QuotePath(linkPath) + " ] && rm -f " + QuotePath(linkPath)
		if _, err := output(ctx, l.exec, errors.ErrLinkRemove, "failed to remove broken link "+linkPath, cmd); err != nil {
			errs = append(errs, err)
			if errors.IsErrorCode(err, errors.ErrTransport) {
				break
			}
			continue
		}
		logger.Info().Str("link", linkPath).Str("target", link.LinkTarget).Msg("removed broken link")
		cleaned = append(cleaned, link.Name)
	}
	return cleaned, stderrors.Join(errs...)
}
