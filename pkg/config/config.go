package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/arthur-debert/skillman/pkg/errors"
	"github.com/arthur-debert/skillman/pkg/logging"
	"github.com/arthur-debert/skillman/pkg/paths"
	"github.com/arthur-debert/skillman/pkg/scanner"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "SKILLMAN_"

// Config is the merged configuration.
type Config struct {
	Repo    RepoConfig    `koanf:"repo"`
	Targets TargetsConfig `koanf:"targets"`
	Store   StoreConfig   `koanf:"store"`
	Scan    ScanConfig    `koanf:"scan"`
	Remote  RemoteConfig  `koanf:"remote"`
	UI      UIConfig      `koanf:"ui"`

	// Source is the user file that was merged, empty when none was found
	Source string `koanf:"-"`
}

type RepoConfig struct {
	Path string `koanf:"path"`
}

type TargetsConfig struct {
	UserSkillsDir       string `koanf:"user_skills_dir"`
	ProjectSkillsSubdir string `koanf:"project_skills_subdir"`
}

type StoreConfig struct {
	Dir string `koanf:"dir"`
}

type ScanConfig struct {
	Manifest string   `koanf:"manifest"`
	Exclude  []string `koanf:"exclude"`
}

type RemoteConfig struct {
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	CommandTimeout time.Duration `koanf:"command_timeout"`
	KnownHosts     string        `koanf:"known_hosts"`
	ConfigDir      string        `koanf:"config_dir"`
	SkillsDir      string        `koanf:"skills_dir"`
}

type UIConfig struct {
	MarkdownStyle string `koanf:"markdown_style"`
}

// Layout returns the local target layout.
func (c *Config) Layout() paths.Layout {
	return paths.Layout{
		UserSkillsDir:       c.Targets.UserSkillsDir,
		ProjectSkillsSubdir: c.Targets.ProjectSkillsSubdir,
	}
}

// ScanOptions returns the scanner options without a user skills directory.
func (c *Config) ScanOptions() scanner.Options {
	return scanner.Options{
		Manifest: c.Scan.Manifest,
		Exclude:  c.Scan.Exclude,
	}
}

// envKey maps SKILLMAN_SECTION_SOME_KEY to section.some_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, key, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + key
}

// Load merges the defaults, the user file at path (paths.ConfigFile when
// empty) and the environment. A missing default file is skipped; a missing
// explicit file is an error.
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides is Load with a final layer of dotted keys, used for
// command line flags. Empty string values are ignored.
func LoadWithOverrides(path string, overrides map[string]interface{}) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	explicit := path != ""
	if !explicit {
		path = paths.ConfigFile()
	}
	path = paths.ExpandHome(path)

	source := ""
	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
		source = path
	case explicit || !stderrors.Is(err, fs.ErrNotExist):
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config %s", path)
	default:
		logger.Debug().Str("path", path).Msg("no user config, using defaults")
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	flags := make(map[string]interface{}, len(overrides))
	for key, value := range overrides {
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		flags[key] = value
	}
	if len(flags) > 0 {
		if err := k.Load(confmap.Provider(flags, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}

	postProcess(&cfg)
	cfg.Source = source
	logger.Debug().Str("source", source).Str("repo", cfg.Repo.Path).Msg("configuration loaded")
	return &cfg, nil
}

// postProcess expands local paths and fills the derived defaults. Remote
// directories keep their ~, which the remote shell expands.
func postProcess(cfg *Config) {
	cfg.Repo.Path = paths.ExpandHome(cfg.Repo.Path)
	cfg.Targets.UserSkillsDir = paths.ExpandHome(cfg.Targets.UserSkillsDir)
	if cfg.Targets.ProjectSkillsSubdir == "" {
		cfg.Targets.ProjectSkillsSubdir = paths.DefaultProjectSkillsSubdir
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = paths.StoreDir()
	}
	cfg.Store.Dir = paths.ExpandHome(cfg.Store.Dir)
	cfg.Remote.KnownHosts = paths.ExpandHome(cfg.Remote.KnownHosts)
	if cfg.Scan.Manifest == "" {
		cfg.Scan.Manifest = scanner.DefaultManifest
	}
}
