package remote

import (
	"context"
	"path"
	"strings"

	"github.com/arthur-debert/skillman/pkg/datastore"
	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
)

// Persistence implements types.Persistence on the remote store directory,
// using the same file layout as datastore.FileStore.
type Persistence struct {
	exec Executor
	dir  string
}

var _ types.Persistence = (*Persistence)(nil)

// NewPersistence creates a Persistence rooted at dir on the remote host.
func NewPersistence(exec Executor, dir string) *Persistence {
	return &Persistence{exec: exec, dir: dir}
}

type projectDoc struct {
	Projects []types.ProjectConfig `toml:"projects"`
}

func (p *Persistence) profilePath(id string) string {
	return path.Join(p.dir, "profiles", id+".toml")
}

func (p *Persistence) projectsPath() string {
	return path.Join(p.dir, "projects.toml")
}

func validID(kind, id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return errors.Newf(errors.ErrInvalidInput, "invalid %s id %q", kind, id)
	}
	return nil
}

func (p *Persistence) write(ctx context.Context, file string, v interface{}) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, errors.ErrPersistence, "failed to encode %s", file)
	}
	cmd, ok := writeFileCommand(file, data)
	if !ok {
		return errors.Newf(errors.ErrPersistence, "content of %s contains the heredoc delimiter", file)
	}
	_, err = output(ctx, p.exec, errors.ErrPersistence, "failed to write "+file, cmd)
	return err
}

// ListProfiles returns presets (or their overrides) followed by the profiles
// stored on the remote host.
func (p *Persistence) ListProfiles(ctx context.Context) ([]types.Profile, error) {
	cmd := "for f in " + QuotePath(path.Join(p.dir, "profiles")) + "/*.toml; do" +
		` [ -f "$f" ] || continue;` +
		" printf '%s\\n' '" + blockSeparator + "';" +
		` printf 'FILE:%s\n' "${f##*/}";` +
		` cat "$f"; echo;` +
		" done"

	out, err := output(ctx, p.exec, errors.ErrPersistence, "failed to list profiles", cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("remote.persistence")
	var user []types.Profile
	for _, block := range splitBlocks(out) {
		header, body, _ := strings.Cut(block, "\n")
		file := strings.TrimPrefix(header, "FILE:")

		var profile types.Profile
		if err := toml.Unmarshal([]byte(body), &profile); err != nil {
			logger.Warn().Err(err).Str("file", file).Msg("skipping unreadable profile")
			continue
		}
		if profile.ID == "" {
			profile.ID = strings.TrimSuffix(file, ".toml")
		}
		user = append(user, profile)
	}
	return datastore.MergePresets(datastore.Presets(), user), nil
}

// SaveProfile writes profiles/<id>.toml on the remote host.
func (p *Persistence) SaveProfile(ctx context.Context, profile types.Profile) error {
	if err := validID("profile", profile.ID); err != nil {
		return err
	}
	return p.write(ctx, p.profilePath(profile.ID), profile)
}

// DeleteProfile removes the remote profile file. A missing file is not an
// error.
func (p *Persistence) DeleteProfile(ctx context.Context, id string) error {
	if err := validID("profile", id); err != nil {
		return err
	}
	file := p.profilePath(id)
	_, err := output(ctx, p.exec, errors.ErrPersistence, "failed to remove "+file, "rm -f "+QuotePath(file))
	return err
}

func (p *Persistence) loadProjects(ctx context.Context) ([]types.ProjectConfig, error) {
	file := p.projectsPath()
	cmd := "if [ -f " + QuotePath(file) + " ]; then cat " + QuotePath(file) + "; fi"
	out, err := output(ctx, p.exec, errors.ErrPersistence, "failed to read "+file, cmd)
	if err != nil {
		return nil, err
	}
	var doc projectDoc
	if err := toml.Unmarshal([]byte(out), &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrPersistence, "failed to parse %s", file)
	}
	return doc.Projects, nil
}

// ListProjects returns the remote projects in insertion order.
func (p *Persistence) ListProjects(ctx context.Context) ([]types.ProjectConfig, error) {
	projects, err := p.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []types.ProjectConfig{}
	}
	return projects, nil
}

// SaveProject replaces the project with the same id in place or appends it.
func (p *Persistence) SaveProject(ctx context.Context, project types.ProjectConfig) error {
	if project.ID == "" {
		return errors.New(errors.ErrInvalidInput, "project id cannot be empty")
	}
	projects, err := p.loadProjects(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range projects {
		if projects[i].ID == project.ID {
			projects[i] = project
			replaced = true
			break
		}
	}
	if !replaced {
		projects = append(projects, project)
	}
	return p.write(ctx, p.projectsPath(), projectDoc{Projects: projects})
}

// DeleteProject removes a remote project. A missing id is not an error.
func (p *Persistence) DeleteProject(ctx context.Context, id string) error {
	projects, err := p.loadProjects(ctx)
	if err != nil {
		return err
	}
	kept := make([]types.ProjectConfig, 0, len(projects))
	for _, project := range projects {
		if project.ID != id {
			kept = append(kept, project)
		}
	}
	if len(kept) == len(projects) {
		return nil
	}
	return p.write(ctx, p.projectsPath(), projectDoc{Projects: kept})
}
