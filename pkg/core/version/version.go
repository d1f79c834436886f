// ============================================================================
// Frege - minimal scripting engine
// ============================================================================
//
// Package:     version
// Description: Central version management for the frege binaries
// Author:      msto63
// Created:     2025-12-06
// Modified:    2026-10-16
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants for frege components
const (
	// Platform version
	Platform = "0.3.0"

	// Language version of the accepted script grammar
	Language = "1.0.0"

	// Protocol version of the playground WebSocket messages
	Protocol = "1.0.0"
)

// Build metadata, set via -ldflags "-X github.com/msto63/frege/pkg/core/version.GitCommit=..."
var (
	GitCommit = "development"
	BuildDate = "unknown"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "language", "grammar":
		return Language
	case "protocol", "playground":
		return Protocol
	default:
		return Platform
	}
}

// Info describes the running binary
type Info struct {
	Platform  string `json:"platform"`
	Language  string `json:"language"`
	Protocol  string `json:"protocol"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OSArch    string `json:"os_arch"`
}

// Get returns the build information of the running binary
func Get() Info {
	return Info{
		Platform:  Platform,
		Language:  Language,
		Protocol:  Protocol,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OSArch:    fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns the one-line version banner
func (i Info) String() string {
	return fmt.Sprintf("frege v%s (language %s, commit %s)", i.Platform, i.Language, i.GitCommit)
}
