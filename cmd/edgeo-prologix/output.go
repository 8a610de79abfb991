package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/edgeo/drivers/prologix"
)

// OutputFormat represents output format types
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatCSV   OutputFormat = "csv"
)

// Formatter handles output formatting
type Formatter struct {
	format OutputFormat
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(format string) *Formatter {
	return &Formatter{
		format: OutputFormat(format),
		writer: os.Stdout,
	}
}

// SetWriter sets the output writer
func (f *Formatter) SetWriter(w io.Writer) {
	f.writer = w
}

// controllerRecord is the JSON shape of one discovered controller
type controllerRecord struct {
	Address         string `json:"address"`
	MAC             string `json:"mac"`
	Name            string `json:"name,omitempty"`
	Mode            string `json:"mode"`
	Alert           string `json:"alert"`
	IPType          string `json:"ip_type"`
	Netmask         string `json:"netmask"`
	Gateway         string `json:"gateway"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	AppVersion      string `json:"app_version"`
	BootVersion     string `json:"boot_version"`
	HardwareVersion string `json:"hardware_version"`
}

func toRecord(info *prologix.ControllerInfo) controllerRecord {
	return controllerRecord{
		Address:         info.IPAddr.String(),
		MAC:             info.MAC.String(),
		Name:            info.Name(),
		Mode:            info.Mode.String(),
		Alert:           info.Alert.String(),
		IPType:          info.IPType.String(),
		Netmask:         info.Netmask.String(),
		Gateway:         info.Gateway.String(),
		UptimeSeconds:   int64(info.Uptime / time.Second),
		AppVersion:      info.AppVersion.String(),
		BootVersion:     info.BootVersion.String(),
		HardwareVersion: info.HardwareVersion.String(),
	}
}

// PrintControllers writes the discovery result in the configured format
func (f *Formatter) PrintControllers(controllers []*prologix.ControllerInfo) error {
	switch f.format {
	case FormatJSON:
		return f.printJSON(controllers)
	case FormatCSV:
		return f.printCSV(controllers)
	default:
		return f.printTable(controllers)
	}
}

func (f *Formatter) printJSON(controllers []*prologix.ControllerInfo) error {
	records := make([]controllerRecord, 0, len(controllers))
	for _, info := range controllers {
		records = append(records, toRecord(info))
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func (f *Formatter) printCSV(controllers []*prologix.ControllerInfo) error {
	fmt.Fprintln(f.writer, "address,mac,name,mode,alert,ip_type,uptime_seconds,app_version")
	for _, info := range controllers {
		r := toRecord(info)
		fmt.Fprintf(f.writer, "%s,%s,%s,%s,%s,%s,%d,%s\n",
			r.Address, r.MAC, r.Name, r.Mode, r.Alert, r.IPType, r.UptimeSeconds, r.AppVersion)
	}
	return nil
}

func (f *Formatter) printTable(controllers []*prologix.ControllerInfo) error {
	headers := []string{"ADDRESS", "MAC", "NAME", "MODE", "ALERT", "UPTIME", "APP VER"}
	rows := make([][]string, 0, len(controllers))
	for _, info := range controllers {
		rows = append(rows, []string{
			info.IPAddr.String(),
			info.MAC.String(),
			info.Name(),
			info.Mode.String(),
			info.Alert.String(),
			formatUptime(info.Uptime),
			info.AppVersion.String(),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	fmt.Fprintln(f.writer)
	for i, h := range headers {
		fmt.Fprintf(f.writer, "%-*s ", widths[i], h)
	}
	fmt.Fprintln(f.writer)
	for i := range headers {
		fmt.Fprintf(f.writer, "%s ", strings.Repeat("-", widths[i]))
	}
	fmt.Fprintln(f.writer)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprintf(f.writer, "%-*s ", widths[i], cell)
		}
		fmt.Fprintln(f.writer)
	}

	return nil
}

// formatUptime renders a duration as e.g. "3d2h15m4s"
func formatUptime(d time.Duration) string {
	days := int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour

	if days > 0 {
		return fmt.Sprintf("%dd%s", days, d.String())
	}
	return d.String()
}
