package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/prayer-times-aggregation/internal/config"
)

var version = "dev"

type globalFlags struct {
	configPath string
	city       string
	provider   string
	verbose    bool
}

func main() {
	var g globalFlags

	root := &cobra.Command{
		Use:           "namazctl",
		Short:         "Turkish prayer times from Diyanet, Aladhan, eMushaf and NamazVakti",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", config.DefaultClientConfigPath(), "path to config file")
	root.PersistentFlags().StringVar(&g.city, "city", "", "city code or name (default from config)")
	root.PersistentFlags().StringVarP(&g.provider, "provider", "p", "", "provider id or auto (default from config)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log provider activity to stderr")

	root.AddCommand(
		newTimesCmd(&g),
		newNextCmd(&g),
		newCitiesCmd(),
		newProvidersCmd(),
		newCacheCmd(&g),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
