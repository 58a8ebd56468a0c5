package links

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/types"
)

// Local implements types.Linker on a local (or sandboxed) filesystem.
type Local struct {
	fs types.FS
}

// NewLocal creates a Linker backed by fsys.
func NewLocal(fsys types.FS) *Local {
	return &Local{fs: fsys}
}

var _ types.Linker = (*Local)(nil)

// ValidateName rejects names that would escape the target directory.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.Newf(errors.ErrInvalidInput, "invalid skill link name %q", name)
	}
	return nil
}

func isSymlink(info fs.FileInfo) bool {
	return info.Mode()&fs.ModeSymlink != 0
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// CreateLink makes targetDir/name point to sourcePath. An existing symlink
// is replaced; an existing real directory or file is refused.
func (l *Local) CreateLink(ctx context.Context, targetDir, name, sourcePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return err
	}

	logger := logging.GetLogger("links.local")
	linkPath := filepath.Join(targetDir, name)

	if err := l.fs.MkdirAll(targetDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrLinkCreate, "failed to create skills directory %s", targetDir)
	}

	info, err := l.fs.Lstat(linkPath)
	switch {
	case err == nil && isSymlink(info):
		if dest, rerr := l.fs.Readlink(linkPath); rerr == nil && samePath(dest, sourcePath) {
			logger.Trace().Str("link", linkPath).Msg("link already points to source")
			return nil
		}
		if err := l.fs.Remove(linkPath); err != nil {
			return errors.Wrapf(err, errors.ErrLinkCreate, "failed to replace existing link %s", linkPath)
		}
		logger.Debug().Str("link", linkPath).Msg("replaced existing link")
	case err == nil:
		direct := errors.Newf(errors.ErrDirectLink, "cannot replace real directory: %s", linkPath).
			WithDetail("path", linkPath)
		return errors.Wrapf(direct, errors.ErrLinkCreate, "failed to link %s", name)
	case !stderrors.Is(err, fs.ErrNotExist):
		return errors.Wrapf(err, errors.ErrLinkCreate, "failed to inspect %s", linkPath)
	}

	if err := l.fs.Symlink(sourcePath, linkPath); err != nil {
		return errors.Wrapf(err, errors.ErrLinkCreate, "failed to create symlink %s -> %s", linkPath, sourcePath)
	}

	logger.Debug().Str("link", linkPath).Str("source", sourcePath).Msg("created link")
	return nil
}

// RemoveLink removes the symlink targetDir/name. A missing entry is not an
// error; a real directory or file is refused.
func (l *Local) RemoveLink(ctx context.Context, targetDir, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return err
	}

	linkPath := filepath.Join(targetDir, name)
	info, err := l.fs.Lstat(linkPath)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrLinkRemove, "failed to inspect %s", linkPath)
	}
	if !isSymlink(info) {
		direct := errors.Newf(errors.ErrDirectLink, "not a symlink, refusing to remove: %s", linkPath).
			WithDetail("path", linkPath)
		return errors.Wrapf(direct, errors.ErrLinkRemove, "failed to unlink %s", name)
	}
	if err := l.fs.Remove(linkPath); err != nil {
		return errors.Wrapf(err, errors.ErrLinkRemove, "failed to remove symlink %s", linkPath)
	}

	logger := logging.GetLogger("links.local")
	logger.Debug().Str("link", linkPath).Msg("removed link")
	return nil
}

// ProbeLinkStatus classifies targetDir/name.
func (l *Local) ProbeLinkStatus(ctx context.Context, targetDir, name string) (types.LinkStatus, error) {
	if err := ctx.Err(); err != nil {
		return types.LinkInactive, err
	}
	return l.probe(filepath.Join(targetDir, name))
}

func (l *Local) probe(linkPath string) (types.LinkStatus, error) {
	info, err := l.fs.Lstat(linkPath)
	if stderrors.Is(err, fs.ErrNotExist) {
		return types.LinkInactive, nil
	}
	if err != nil {
		return types.LinkInactive, errors.Wrapf(err, errors.ErrLinkList, "failed to inspect %s", linkPath)
	}
	if !isSymlink(info) {
		return types.LinkDirect, nil
	}
	if _, err := l.fs.Stat(linkPath); err != nil {
		return types.LinkBroken, nil
	}
	return types.LinkActive, nil
}

// ListLinks returns every symlink and real directory in targetDir sorted
// case-insensitively by name. Plain files are ignored.
func (l *Local) ListLinks(ctx context.Context, targetDir string) ([]types.LinkInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := l.fs.ReadDir(targetDir)
	if stderrors.Is(err, fs.ErrNotExist) {
		return []types.LinkInfo{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLinkList, "failed to read %s", targetDir)
	}

	links := make([]types.LinkInfo, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(targetDir, entry.Name())
		info, err := l.fs.Lstat(path)
		if err != nil {
			continue
		}

		switch {
		case isSymlink(info):
			dest, _ := l.fs.Readlink(path)
			status := types.LinkActive
			if _, err := l.fs.Stat(path); err != nil {
				status = types.LinkBroken
			}
			links = append(links, types.LinkInfo{Name: entry.Name(), LinkTarget: dest, Status: status})
		case info.IsDir():
			links = append(links, types.LinkInfo{Name: entry.Name(), LinkTarget: path, Status: types.LinkDirect})
		}
	}

	SortLinks(links)
	return links, nil
}

// SourceExists reports whether sourcePath currently resolves.
func (l *Local) SourceExists(ctx context.Context, sourcePath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := l.fs.Stat(sourcePath)
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errors.Wrapf(err, errors.ErrLinkList, "failed to inspect %s", sourcePath)
}

// CleanBroken removes every broken symlink in targetDir. Removal failures
// do not stop the sweep; they are joined into the returned error.
func (l *Local) CleanBroken(ctx context.Context, targetDir string) ([]string, error) {
	links, err := l.ListLinks(ctx, targetDir)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("links.local")
	cleaned := []string{}
	var errs []error
	for _, link := range links {
		if link.Status != types.LinkBroken {
			continue
		}
		path := filepath.Join(targetDir, link.Name)
		if err := l.fs.Remove(path); err != nil {
			errs = append(errs, errors.Wrapf(err, errors.ErrLinkRemove, "failed to remove broken link %s", path))
			continue
		}
		logger.Info().Str("link", path).Str("target", link.LinkTarget).Msg("removed broken link")
		cleaned = append(cleaned, link.Name)
	}

	return cleaned, stderrors.Join(errs...)
}

// SortLinks orders links case-insensitively by name.
func SortLinks(links []types.LinkInfo) {
	sort.SliceStable(links, func(i, j int) bool {
		return strings.ToLower(links[i].Name) < strings.ToLower(links[j].Name)
	})
}
