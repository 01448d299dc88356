package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/config"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// Versions holds the build information stamped in by the linker.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application",
		Run: func(cmd *cobra.Command, args []string) {
			printVersionInfo(&Versions{
				Version:       CoreVersion,
				GolangVersion: GolangVersion,
				BuildTime:     BuildTime,
			})
		},
	}
}

func printVersionInfo(versions *Versions) {
	fmt.Printf("Core Version: v%s\n", versions.Version)
	fmt.Printf("Go Version: %s\n", versions.GolangVersion)
	fmt.Printf("Build Time: %s\n", versions.BuildTime)
}
