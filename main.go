package main

import (
	"runtime/debug"

	"github.com/marcus/notif/cmd"
)

// Version is injected with -ldflags "-X main.Version=v1.2.3"
var Version = "dev"

// buildVersion prefers an injected version, then the module version from
// go install, then devel+<revision>[+dirty] from VCS stamping.
func buildVersion(v string, info *debug.BuildInfo) string {
	if v != "" && v != "dev" {
		return v
	}
	if info == nil {
		return v
	}
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		return mv
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	rev := settings["vcs.revision"]
	if rev == "" {
		return v
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	version := "devel+" + rev
	if settings["vcs.modified"] == "true" {
		version += "+dirty"
	}
	return version
}

func main() {
	info, _ := debug.ReadBuildInfo()
	cmd.SetVersion(buildVersion(Version, info))
	cmd.Execute()
}
