package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgeo/drivers/prologix"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the network for controllers coming and going",
	Long: `Watch rediscovers controllers at a fixed interval and reports when
one appears, disappears, or changes mode.

Examples:
  # Rediscover every 5 seconds
  edgeo-prologix watch

  # Faster polling with a longer collection window
  edgeo-prologix watch --interval 2s --timeout 1s`,

	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "Rediscovery interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	client := createClient()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nStopping watch...")
		cancel()
	}()

	fmt.Printf("Watching for controllers every %s\n", watchInterval)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	known := make(map[string]*prologix.ControllerInfo)
	watchOnce(ctx, client, known)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			watchOnce(ctx, client, known)
		}
	}
}

// watchOnce runs one discovery round and diffs it against the known set
func watchOnce(ctx context.Context, client *prologix.Client, known map[string]*prologix.ControllerInfo) {
	discoverCtx, cancel := context.WithTimeout(ctx, timeout+3*time.Second)
	controllers, err := client.Discover(discoverCtx)
	cancel()

	now := time.Now().Format("15:04:05.000")

	if err != nil && !prologix.IsNotFound(err) {
		fmt.Fprintf(os.Stderr, "[%s] Error: %v\n", now, err)
		return
	}

	seen := make(map[string]bool, len(controllers))
	for _, info := range controllers {
		addr := info.IPAddr.String()
		seen[addr] = true

		prev, ok := known[addr]
		switch {
		case !ok:
			fmt.Printf("[%s] + %s\n", now, info)
		case prev.Mode != info.Mode:
			fmt.Printf("[%s] ~ %s mode %s -> %s\n", now, addr, prev.Mode, info.Mode)
		case verbose:
			fmt.Printf("[%s]   %s\n", now, info)
		}
		known[addr] = info
	}

	for addr := range known {
		if !seen[addr] {
			fmt.Printf("[%s] - %s\n", now, addr)
			delete(known, addr)
		}
	}
}
