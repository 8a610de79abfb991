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

// Package prologix discovers and controls Prologix GPIB-ETHERNET network
// controllers over their proprietary UDP management protocol.
package prologix

import (
	"bytes"
	"fmt"
	"net"
	"time"
)

// DefaultPort is the UDP port the controllers listen on
const DefaultPort = 3040

// Magic is the first byte of every protocol message
const Magic = 0x5A

// HeaderLength is the size of the common message envelope
const HeaderLength = 12

// InfoLength is the size of a full identify reply
const InfoLength = 76

// NameLength is the size of the raw device name field in an identify reply
const NameLength = 32

// minReplyLength is the shortest datagram discovery will even look at; anything
// shorter cannot carry the IP-bearing prefix and is dropped on the floor.
const minReplyLength = 24

// Command identifies the protocol operation carried by a message
type Command uint8

const (
	CommandIdentify Command = 0x00
	CommandReboot   Command = 0x12
)

func (c Command) String() string {
	switch c {
	case CommandIdentify:
		return "identify"
	case CommandReboot:
		return "reboot"
	default:
		return fmt.Sprintf("command(0x%02X)", uint8(c))
	}
}

// MacAddress is a raw 6-byte Ethernet hardware address
type MacAddress [6]byte

// BroadcastMAC is the wildcard target placed in the MAC field of broadcast requests
var BroadcastMAC = MacAddress{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

func (m MacAddress) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", m[0], m[1], m[2], m[3], m[4], m[5])
}

// IsBroadcast reports whether the address is the broadcast sentinel
func (m MacAddress) IsBroadcast() bool {
	return m == BroadcastMAC
}

// MessageHeader is the 12-byte envelope shared by every request and reply.
// The sequence is a per-request nonce; replies are not matched against it.
type MessageHeader struct {
	Magic    uint8
	Command  Command
	Sequence uint16
	MAC      MacAddress
}

// ControllerMode tells whether the controller is running its bootloader or
// its application firmware
type ControllerMode uint8

const (
	ModeBootloader ControllerMode = iota
	ModeApplication
)

func (m ControllerMode) String() string {
	switch m {
	case ModeBootloader:
		return "bootloader"
	case ModeApplication:
		return "application"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ControllerAlert is the controller's self-reported health state
type ControllerAlert uint8

const (
	AlertOk ControllerAlert = iota
	AlertWarning
	AlertError
)

func (a ControllerAlert) String() string {
	switch a {
	case AlertOk:
		return "ok"
	case AlertWarning:
		return "warning"
	case AlertError:
		return "error"
	default:
		return fmt.Sprintf("alert(%d)", uint8(a))
	}
}

// ControllerIPType tells how the controller obtained its IP configuration
type ControllerIPType uint8

const (
	IPTypeDynamic ControllerIPType = iota
	IPTypeStatic
)

func (t ControllerIPType) String() string {
	switch t {
	case IPTypeDynamic:
		return "dynamic"
	case IPTypeStatic:
		return "static"
	default:
		return fmt.Sprintf("ip-type(%d)", uint8(t))
	}
}

// Netmask is a raw IPv4 netmask
type Netmask [4]byte

func (n Netmask) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", n[0], n[1], n[2], n[3])
}

// Version is a four-component firmware or hardware version
type Version struct {
	Major  uint8
	Minor  uint8
	Patch  uint8
	Bugfix uint8
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Bugfix)
}

// RebootType selects whether the controller restarts into its bootloader or
// back into the application firmware
type RebootType uint8

const (
	RebootBootloader RebootType = 0
	RebootReset      RebootType = 1
)

func (r RebootType) String() string {
	switch r {
	case RebootBootloader:
		return "bootloader"
	case RebootReset:
		return "reset"
	default:
		return fmt.Sprintf("reboot-type(%d)", uint8(r))
	}
}

// ControllerInfo is a decoded identify reply: one controller's state at the
// moment it answered. Values are set once by the decoder and must be treated
// as read-only afterwards.
type ControllerInfo struct {
	MAC             MacAddress
	Uptime          time.Duration
	Mode            ControllerMode
	Alert           ControllerAlert
	IPType          ControllerIPType
	IPAddr          net.IP
	Netmask         Netmask
	Gateway         net.IP
	AppVersion      Version
	BootVersion     Version
	HardwareVersion Version

	// RawName is the 32-byte device name field as it appeared on the wire.
	// Its content is not specified by the protocol.
	RawName [NameLength]byte
}

// Name returns the device name with any NUL padding stripped
func (c *ControllerInfo) Name() string {
	name := c.RawName[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return string(name)
}

func (c *ControllerInfo) String() string {
	return fmt.Sprintf("%s (%s, %s, up %s)", c.IPAddr, c.MAC, c.Mode, c.Uptime)
}
