// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgeo/drivers/prologix"
)

var (
	cfgFile       string
	port          int
	timeout       time.Duration
	outputFmt     string
	verbose       bool
	localAddress  string
	broadcastAddr string

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "edgeo-prologix",
	Short: "Discover and control Prologix GPIB-ETHERNET controllers",
	Long: `edgeo-prologix is a command-line tool for Prologix GPIB-ETHERNET
network controllers.

It discovers controllers on the local network via UDP broadcast and can
reboot a controller into its bootloader or back into application firmware.

Examples:
  # Discover controllers on the network
  edgeo-prologix discover

  # Discover with a longer collection window
  edgeo-prologix discover --timeout 2s

  # Reboot a controller back into its application firmware
  edgeo-prologix reboot 192.168.1.42

  # Reboot a controller into its bootloader (for firmware updates)
  edgeo-prologix reboot 192.168.1.42 --mode bootloader

  # Keep rediscovering and report controllers coming and going
  edgeo-prologix watch --interval 5s`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logger
		logLevel := slog.LevelInfo
		if verbose {
			logLevel = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))

		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.edgeo-prologix.yaml)")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", prologix.DefaultPort, "Controller UDP port")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 500*time.Millisecond, "Discovery collection window")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format (table, json, csv)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&localAddress, "local", "", "Local address to bind to (e.g., 0.0.0.0:0)")
	rootCmd.PersistentFlags().StringVar(&broadcastAddr, "broadcast", "", "Broadcast address for identify requests (default 255.255.255.255)")

	// Bind flags to viper
	viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("local", rootCmd.PersistentFlags().Lookup("local"))
	viper.BindPFlag("broadcast", rootCmd.PersistentFlags().Lookup("broadcast"))

	// Add subcommands
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(rebootCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".edgeo-prologix")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PROLOGIX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// createClient creates a prologix client with current configuration
func createClient() *prologix.Client {
	opts := []prologix.Option{
		prologix.WithPort(port),
		prologix.WithTimeout(timeout),
		prologix.WithLogger(logger),
	}

	if localAddress != "" {
		opts = append(opts, prologix.WithLocalAddress(localAddress))
	}

	if broadcastAddr != "" {
		opts = append(opts, prologix.WithBroadcastAddress(broadcastAddr))
	}

	return prologix.NewClient(opts...)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("edgeo-prologix version 1.0.0")
	},
}
