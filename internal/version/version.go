// Package version описывает сборку сервиса. Значения задаются через -ldflags:
//
//	-X github.com/vladislavdragonenkov/fulfillment/internal/version.version=v1.2.0
//	-X github.com/vladislavdragonenkov/fulfillment/internal/version.commit=$(git rev-parse HEAD)
//	-X github.com/vladislavdragonenkov/fulfillment/internal/version.date=$(date -u +%FT%TZ)
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const unknown = "unknown"

var (
	version = "dev"
	commit  = ""
	date    = ""

	readBuildInfo = debug.ReadBuildInfo
)

// BuildInfo — сведения о сборке.
type BuildInfo struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
}

// Get возвращает сведения о сборке. Без ldflags commit и date берутся из VCS-меток Go toolchain.
func Get() BuildInfo {
	info := BuildInfo{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
	}
	if info.Commit == "" || info.Date == "" {
		if bi, ok := readBuildInfo(); ok {
			for _, s := range bi.Settings {
				switch {
				case s.Key == "vcs.revision" && info.Commit == "":
					info.Commit = s.Value
				case s.Key == "vcs.time" && info.Date == "":
					info.Date = s.Value
				}
			}
		}
	}
	if info.Commit == "" {
		info.Commit = unknown
	}
	if info.Date == "" {
		info.Date = unknown
	}
	return info
}

// Version возвращает только версию: для health и ресурсов трейсинга.
func Version() string { return version }

func (b BuildInfo) String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s go=%s", b.Version, b.Commit, b.Date, b.GoVersion)
}

// Fields отдаёт сведения о сборке в виде полей для структурированного лога.
func (b BuildInfo) Fields() map[string]any {
	return map[string]any{
		"version":    b.Version,
		"commit":     b.Commit,
		"build_date": b.Date,
		"go_version": b.GoVersion,
	}
}
