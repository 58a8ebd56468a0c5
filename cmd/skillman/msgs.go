package skillman

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort          = "Manage skill bundles through symlinks"
	MsgScanShort          = "Rescan the skill repository"
	MsgSkillsShort        = "List the skills found in the repository"
	MsgSkillShort         = "Inspect one skill"
	MsgSkillShowShort     = "Show a skill and its manifest"
	MsgToggleShort        = "Link or unlink one skill"
	MsgLinksShort         = "List the entries of a skills directory"
	MsgCleanShort         = "Remove broken skill links"
	MsgProfileShort       = "Manage skill profiles"
	MsgProfileListShort   = "List profiles"
	MsgProfileShowShort   = "Show one profile"
	MsgProfileSaveShort   = "Create or update a profile and resync its projects"
	MsgProfileDeleteShort = "Delete a profile and resync its projects"
	MsgProfileApplyShort  = "Link every skill of a profile into a target"
	MsgProjectShort       = "Manage project configurations"
	MsgProjectListShort   = "List projects"
	MsgProjectAddShort    = "Add a project and sync its skills directory"
	MsgProjectEditShort   = "Change a project and resync it"
	MsgProjectDeleteShort = "Forget a project, leaving its links in place"
	MsgProjectSyncShort   = "Resync one project, or every project"
	MsgProjectLinksShort  = "List the links of a project"
	MsgStatsShort         = "Show usage statistics"
	MsgRemoteShort        = "Manage remote servers"
	MsgRemoteListShort    = "List remote servers"
	MsgRemoteAddShort     = "Add or replace a remote server"
	MsgRemoteDeleteShort  = "Delete a remote server"
	MsgRemoteTestShort    = "Test the connection to a remote server"
	MsgWatchShort         = "Rescan and resync when the repository changes"
	MsgVersionShort       = "Print version information"
	MsgCompletionShort    = "Generate shell completion script"
	MsgManShort           = "Generate man pages"

	// Status messages
	MsgScanned         = "Found %d skills in %s"
	MsgToggled         = "%s is now %s in %s"
	MsgCleaned         = "Removed %d broken links from %s"
	MsgNothingToClean  = "No broken links in %s"
	MsgProfileDeleted  = "Deleted profile %s"
	MsgProjectDeleted  = "Deleted project %s, its links were left in place"
	MsgRemoteSaved     = "Saved remote %s"
	MsgRemoteDeleted   = "Deleted remote %s"
	MsgRemoteReachable = "%s is reachable"
	MsgWatching        = "Watching %s, press Ctrl-C to stop"
	MsgRepoChanged     = "Repository changed, %d skills"
	MsgVersion         = "skillman version %s\n"
	MsgCommit          = "Commit: %s\n"
	MsgBuilt           = "Built:  %s\n"

	// Error messages
	MsgErrNoCommand    = "no command specified"
	MsgErrLoadConfig   = "failed to load configuration: %w"
	MsgErrWatchRemote  = "watch only works on the local environment"
	MsgErrProjectPath  = "failed to resolve project path: %w"
	MsgErrStatsLoad    = "failed to read usage statistics: %w"
	MsgErrProfileFlags = "--skill cannot be combined with --add or --remove"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Configuration file (default $XDG_CONFIG_HOME/skillman/config.toml)"
	MsgFlagRemote      = "Run against the remote server with this id"
	MsgFlagRepo        = "Skill repository, overrides repo.path"
	MsgFlagFormat      = "Output format: auto, term, text or json"
	MsgFlagProject     = "Target a project by id or path instead of the user skills directory"
	MsgFlagAll         = "Apply to every project"
	MsgFlagTop         = "Number of entries in each ranking"
	MsgFlagReset       = "Reset every counter"
	MsgFlagProfileID   = "Profile id, a new one is generated when empty"
	MsgFlagName        = "Display name"
	MsgFlagDescription = "Description"
	MsgFlagColor       = "Display color"
	MsgFlagSkills      = "Skill references, replacing the current list"
	MsgFlagAddSkills   = "Skill references to add"
	MsgFlagRemove      = "Skill references to remove"
	MsgFlagProfiles    = "Profile ids"
	MsgFlagExtra       = "Extra skill references"
	MsgFlagHost        = "Host name or address"
	MsgFlagPort        = "SSH port"
	MsgFlagUser        = "SSH user name"
	MsgFlagAuth        = "Authentication: key, agent or password"
	MsgFlagKey         = "Private key path for key authentication"
	MsgFlagRemoteRepo  = "Skill repository path on the server"
	MsgFlagConfigDir   = "Configuration directory on the server"
	MsgFlagSkillsDir   = "User skills directory on the server"
	MsgFlagConnectSecs = "Connect timeout in seconds"
	MsgFlagCommandSecs = "Command timeout in seconds"
	MsgFlagDebounce    = "Quiet period before a change is handled"
	MsgFlagManDir      = "Directory the man pages are written to"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/toggle-long.txt
	msgToggleLongRaw string
	MsgToggleLong    = strings.TrimSpace(msgToggleLongRaw)

	//go:embed msgs/profile-save-long.txt
	msgProfileSaveLongRaw string
	MsgProfileSaveLong    = strings.TrimSpace(msgProfileSaveLongRaw)

	//go:embed msgs/remote-add-long.txt
	msgRemoteAddLongRaw string
	MsgRemoteAddLong    = strings.TrimSpace(msgRemoteAddLongRaw)
)
