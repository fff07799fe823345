package main

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

// versionString formats the build information. Binaries built with
// `go install module@version` carry no ldflags, so the module version and
// VCS stamp are read from the embedded build info instead.
func versionString() string {
	v, c, d := version, commit, date

	if info, ok := debug.ReadBuildInfo(); ok && v == "dev" {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				c = s.Value
			}
			if s.Key == "vcs.time" {
				d = s.Value
			}
		}
	}

	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s) %s", v, c, d)
}
