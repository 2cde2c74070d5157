package app

import (
	"log/slog"
	"runtime"
	"time"

	"dclock/internal/buildinfo"
)

// logBanner reports the platform and the current time in loc.
func logBanner(log *slog.Logger, loc *time.Location) {
	log.Info("system info",
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
		"cpus", runtime.NumCPU(),
		"go", runtime.Version(),
	)
	log.Info("build",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"date", buildinfo.Date,
	)
	log.Info("current system time",
		"time", time.Now().In(loc).Format(time.ANSIC),
		"zone", loc.String(),
	)
}
