package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pilotage",
	Short: "Pilotage — internal operations platform",
	Long:  "Pilotage is the internal platform behind the LMNP AI and SCI AI products: authentication, developer time tracking against monthly quotas, shareholder registry, and the monthly activity recap mailing.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: configs/pilotage.yaml)")
}

func main() {
	// A local .env is optional; environment variables win over it.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
