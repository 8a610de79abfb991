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
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeo/drivers/prologix"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover Prologix controllers on the network",
	Long: `Discover broadcasts one identify request and lists every controller
that answers within the collection window.

Examples:
  # Discover with the default 500ms window
  edgeo-prologix discover

  # Give slow controllers more time to answer
  edgeo-prologix discover --timeout 2s

  # Discover on a specific subnet
  edgeo-prologix discover --broadcast 192.168.1.255`,

	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	client := createClient()

	ctx, cancel := context.WithTimeout(context.Background(), timeout+3*time.Second)
	defer cancel()

	fmt.Fprintln(os.Stderr, "Discovering Prologix controllers...")

	controllers, err := client.Discover(ctx)
	if err != nil {
		if prologix.IsNotFound(err) {
			fmt.Println("No controllers found")
			return nil
		}
		return fmt.Errorf("discovery: %w", err)
	}

	// Stable output order
	sort.Slice(controllers, func(i, j int) bool {
		return controllers[i].IPAddr.String() < controllers[j].IPAddr.String()
	})

	f := NewFormatter(outputFmt)
	if err := f.PrintControllers(controllers); err != nil {
		return err
	}

	if outputFmt == "table" {
		fmt.Printf("\nFound %d controller(s)\n", len(controllers))
	}

	if verbose {
		printMetrics(client.Metrics().Snapshot())
	}

	return nil
}

func printMetrics(snap prologix.MetricsSnapshot) {
	fmt.Fprintf(os.Stderr, "\nMetrics:\n")
	fmt.Fprintf(os.Stderr, "  Identify requests sent: %d\n", snap.IdentifySent)
	fmt.Fprintf(os.Stderr, "  Replies accepted:       %d\n", snap.RepliesAccepted)
	fmt.Fprintf(os.Stderr, "  Short datagrams dropped: %d\n", snap.ShortDatagramsDropped)
	fmt.Fprintf(os.Stderr, "  Bytes sent/received:    %d/%d\n", snap.BytesSent, snap.BytesReceived)
}
