// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the screening-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the screening-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "screening-engine",
	Short: "Title-based record linkage and screening for academic paper reviews",
	Long: `screening-engine links a structured paper metadata table against a
plain-text abstract corpus by title matching, recovers missing abstracts
and DOIs, and screens the linked dataset against rule-based inclusion
criteria.

Each pipeline stage is a subcommand: link matches metadata rows to corpus
records, screen applies inclusion criteria, and store inspects the run
history.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./screening-engine.yaml or ~/.config/screening-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("screening-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "screening-engine"))
		}
	}

	viper.SetEnvPrefix("SCREENING_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// flagOrConfigString resolves a setting from the flag when set, then the
// config file or environment, then the flag default.
func flagOrConfigString(cmd *cobra.Command, name string) string {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetString(name)
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

func flagOrConfigFloat(cmd *cobra.Command, name string) float64 {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetFloat64(name)
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return v
}

func flagOrConfigInt(cmd *cobra.Command, name string) int {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetInt(name)
	}
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
