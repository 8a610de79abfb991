package main

import (
	"bytes"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/edgeo/drivers/prologix"
)

func sampleController() *prologix.ControllerInfo {
	info := &prologix.ControllerInfo{
		MAC:        prologix.MacAddress{0x00, 0x80, 0xC1, 0x11, 0x22, 0x33},
		Uptime:     93784 * time.Second,
		Mode:       prologix.ModeApplication,
		Alert:      prologix.AlertOk,
		IPType:     prologix.IPTypeStatic,
		IPAddr:     net.IPv4(192, 168, 1, 42),
		Netmask:    prologix.Netmask{255, 255, 255, 0},
		Gateway:    net.IPv4(192, 168, 1, 1),
		AppVersion: prologix.Version{Major: 1, Minor: 2, Patch: 3, Bugfix: 4},
	}
	copy(info.RawName[:], "bench-3")
	return info
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{4 * time.Second, "4s"},
		{93784 * time.Second, "1d2h3m4s"},
		{48 * time.Hour, "2d0s"},
	}

	for _, tt := range tests {
		if got := formatUptime(tt.d); got != tt.want {
			t.Errorf("formatUptime(%s)=%q want %q", tt.d, got, tt.want)
		}
	}
}

func TestPrintControllersCSV(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter("csv")
	f.SetWriter(&buf)

	if err := f.PrintControllers([]*prologix.ControllerInfo{sampleController()}); err != nil {
		t.Fatalf("print: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 row", len(lines))
	}
	want := "192.168.1.42,00:80:C1:11:22:33,bench-3,application,ok,static,93784,1.2.3.4"
	if lines[1] != want {
		t.Errorf("row=%q want %q", lines[1], want)
	}
}

func TestPrintControllersJSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter("json")
	f.SetWriter(&buf)

	if err := f.PrintControllers([]*prologix.ControllerInfo{sampleController()}); err != nil {
		t.Fatalf("print: %v", err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0]["address"] != "192.168.1.42" {
		t.Errorf("address=%v", records[0]["address"])
	}
	if records[0]["uptime_seconds"] != float64(93784) {
		t.Errorf("uptime_seconds=%v", records[0]["uptime_seconds"])
	}
}
