package datastore

import (
	"path/filepath"
	"sync"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/types"
)

const remotesFileName = "remotes.toml"

type remoteFile struct {
	Servers []types.RemoteServer `toml:"servers"`
}

// Remotes persists the configured remote servers in remotes.toml.
type Remotes struct {
	mu   sync.Mutex
	fs   types.FS
	path string
}

// NewRemotes stores servers in dir/remotes.toml.
func NewRemotes(fsys types.FS, dir string) *Remotes {
	return &Remotes{fs: fsys, path: filepath.Join(dir, remotesFileName)}
}

func (r *Remotes) load() ([]types.RemoteServer, error) {
	var f remoteFile
	if _, err := readTOML(r.fs, r.path, &f); err != nil {
		return nil, err
	}
	return f.Servers, nil
}

// List returns every server in insertion order.
func (r *Remotes) List() ([]types.RemoteServer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	servers, err := r.load()
	if err != nil {
		return nil, err
	}
	if servers == nil {
		servers = []types.RemoteServer{}
	}
	return servers, nil
}

// Get returns the server with the given id.
func (r *Remotes) Get(id string) (types.RemoteServer, error) {
	servers, err := r.List()
	if err != nil {
		return types.RemoteServer{}, err
	}
	for _, s := range servers {
		if s.ID == id {
			return s, nil
		}
	}
	return types.RemoteServer{}, errors.Newf(errors.ErrRemoteNotFound, "remote server %q not found", id).
		WithDetail("remote", id)
}

// Save adds or replaces a server.
func (r *Remotes) Save(server types.RemoteServer) error {
	if server.ID == "" {
		return errors.New(errors.ErrInvalidInput, "remote server id cannot be empty")
	}
	if server.Host == "" {
		return errors.Newf(errors.ErrInvalidInput, "remote server %q has no host", server.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	servers, err := r.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range servers {
		if servers[i].ID == server.ID {
			servers[i] = server
			replaced = true
			break
		}
	}
	if !replaced {
		servers = append(servers, server)
	}
	return writeTOML(r.fs, r.path, remoteFile{Servers: servers})
}

// Delete removes a server and returns ErrRemoteNotFound if it is unknown.
func (r *Remotes) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	servers, err := r.load()
	if err != nil {
		return err
	}
	kept := make([]types.RemoteServer, 0, len(servers))
	for _, s := range servers {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(servers) {
		return errors.Newf(errors.ErrRemoteNotFound, "remote server %q not found", id)
	}
	return writeTOML(r.fs, r.path, remoteFile{Servers: kept})
}
