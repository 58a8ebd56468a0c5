// Package types defines the core data model and the capability interfaces
// used throughout skillman: skills, profiles, projects, link entries and
// statuses, remote servers, and the Linker/Persistence/Scanner/Recorder
// contracts that local and remote environments implement.
package types
