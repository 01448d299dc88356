package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RoastedBrotato/legacy-dotnet-auditor/cmd/audit"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/cmd/fetch"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/cmd/upload"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/cmd/version"
	"github.com/RoastedBrotato/legacy-dotnet-auditor/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "dotnet-auditor [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Dotnet-auditor is a static auditor for legacy .NET codebases.",
		Long: `Dotnet-auditor scans legacy .NET source trees for modernization risks,
	including database calls in loops, synchronous blocking on async code,
	sequential outbound calls, and duplicated repository logic.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(audit.AuditCmd)
	rootCmd.AddCommand(fetch.FetchCmd)
	rootCmd.AddCommand(upload.UploadCmd)
}

func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return err
	}
	return nil
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Printf("initializing config file function is crashed - %v \n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	version.Init(AppConfig)
	audit.Init(AppConfig)
	fetch.Init(AppConfig)
	upload.Init(AppConfig)
}
