package main

import (
	"runtime/debug"
	"time"
)

// commit and buildDate may be set with -ldflags "-X main.commit=...";
// otherwise they come from the VCS stamp of the build.
var (
	commit    = "dev"
	buildDate = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "dev" && s.Value != "" {
				commit = s.Value
				if len(commit) > 7 {
					commit = commit[:7]
				}
			}
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil && buildDate == "unknown" {
				buildDate = t.Format(time.DateOnly)
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && commit != "dev" {
		commit += "-dirty"
	}
}
