package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parisxmas/OxiDB/OxiStory/internal/config"
)

var Version = "dev"

func main() {
	var configPath string
	rootCmd := &cobra.Command{
		Use:           "oxistory",
		Short:         "OxiStory - relationship story intake and back-office",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (STORY_* env vars override it)")

	load := func() (*config.Config, error) { return config.Load(configPath) }

	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(intakeCmd(load))
	rootCmd.AddCommand(submissionsCmd(load))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
