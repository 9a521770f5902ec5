package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the release of the dashboard server and CLI.
	Version = "0.3.0"

	// DataFormatVersion is the workbook layout the parser understands:
	// one header row, one row per company and fiscal year.
	DataFormatVersion = "v1"

	// APIVersion prefixes the JSON routes (/api/v1) and versions the
	// websocket messages.
	APIVersion = "v1"
)

// Set with -ldflags "-X findash/pkg/contracts.BuildTime=... -X findash/pkg/contracts.GitCommit=...".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is served by /api/version and printed by fincompare version.
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	DataFormat   string `json:"data_format"`
	APIVersion   string `json:"api_version"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		DataFormat:   DataFormatVersion,
		APIVersion:   APIVersion,
	}
}

// String is the one-line form used by the CLI.
func (v VersionInfo) String() string {
	return fmt.Sprintf("fincompare %s (api %s, data format %s, commit %s, built %s, %s %s/%s)",
		v.Version, v.APIVersion, v.DataFormat, v.GitCommit, v.BuildTime, v.GoVersion, v.OS, v.Architecture)
}
