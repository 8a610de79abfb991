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
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeo/drivers/prologix"
)

var rebootMode string

var rebootCmd = &cobra.Command{
	Use:   "reboot <address>",
	Short: "Reboot a controller",
	Long: `Reboot sends a single reboot request to a controller. The request is
fire-and-forget: the protocol carries no acknowledgement, so a successful
send only means the datagram left this host.

Examples:
  # Restart into application firmware
  edgeo-prologix reboot 192.168.1.42

  # Restart into the bootloader (for firmware updates)
  edgeo-prologix reboot 192.168.1.42 --mode bootloader`,

	Args: cobra.ExactArgs(1),
	RunE: runReboot,
}

func init() {
	rebootCmd.Flags().StringVar(&rebootMode, "mode", "reset", "Reboot mode (reset, bootloader)")
}

func runReboot(cmd *cobra.Command, args []string) error {
	target := net.ParseIP(args[0])
	if target == nil {
		return fmt.Errorf("invalid controller address %q", args[0])
	}

	var rt prologix.RebootType
	switch rebootMode {
	case "reset":
		rt = prologix.RebootReset
	case "bootloader":
		rt = prologix.RebootBootloader
	default:
		return fmt.Errorf("invalid reboot mode %q (want reset or bootloader)", rebootMode)
	}

	client := createClient()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Reboot(ctx, target, rt); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}

	fmt.Printf("Reboot (%s) requested for %s\n", rt, target)
	return nil
}
