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

package prologix

import (
	"encoding/binary"
	"math/rand"
	"net"
	"time"
)

// Identify reply field offsets, relative to the start of the datagram.
// All multi-byte numeric fields are big-endian.
const (
	offUptimeDays    = 12 // u16
	offUptimeHours   = 14
	offUptimeMinutes = 15
	offUptimeSeconds = 16
	offMode          = 17
	offAlert         = 18
	offIPType        = 19
	offIPAddr        = 20 // 4 bytes
	offNetmask       = 24 // 4 bytes
	offGateway       = 28 // 4 bytes
	offAppVersion    = 32 // version quad
	offBootVersion   = 36 // version quad
	offHWVersion     = 40 // version quad
	offName          = 44 // 32 bytes
)

// EncodeHeader encodes the 12-byte message envelope. The two reserved
// trailing bytes are always zero.
func EncodeHeader(h MessageHeader) []byte {
	buf := make([]byte, HeaderLength)
	buf[0] = h.Magic
	buf[1] = byte(h.Command)
	binary.BigEndian.PutUint16(buf[2:], h.Sequence)
	copy(buf[4:10], h.MAC[:])
	return buf
}

// DecodeHeader decodes the message envelope from the start of data. It
// performs no validation; callers check the magic byte themselves. data must
// be at least HeaderLength bytes.
func DecodeHeader(data []byte) MessageHeader {
	var h MessageHeader
	h.Magic = data[0]
	h.Command = Command(data[1])
	h.Sequence = binary.BigEndian.Uint16(data[2:4])
	copy(h.MAC[:], data[4:10])
	return h
}

// EncodeIdentifyRequest builds the broadcast identify request. The sequence
// nonce is freshly generated per call; replies are not matched against it.
func EncodeIdentifyRequest() []byte {
	return EncodeHeader(MessageHeader{
		Magic:    Magic,
		Command:  CommandIdentify,
		Sequence: uint16(rand.Uint32()),
		MAC:      BroadcastMAC,
	})
}

// EncodeRebootRequest builds the reboot request: the message envelope
// followed by the reboot type code and three zero bytes.
func EncodeRebootRequest(rt RebootType) []byte {
	header := EncodeHeader(MessageHeader{
		Magic:    Magic,
		Command:  CommandReboot,
		Sequence: uint16(rand.Uint32()),
		MAC:      BroadcastMAC,
	})
	return append(header, byte(rt), 0x00, 0x00, 0x00)
}

// DecodeControllerInfo decodes a full identify reply. It fails with a
// *ParseError when the buffer is shorter than InfoLength or does not start
// with the protocol magic; past those two checks every field is a fixed-width
// read that cannot fail.
func DecodeControllerInfo(data []byte) (*ControllerInfo, error) {
	if len(data) < InfoLength {
		return nil, &ParseError{Length: len(data), Reason: "identify reply truncated"}
	}
	if data[0] != Magic {
		return nil, &ParseError{Length: len(data), Reason: "incorrect magic number at start of message"}
	}

	header := DecodeHeader(data)

	days := binary.BigEndian.Uint16(data[offUptimeDays:])
	uptime := time.Duration(days)*24*time.Hour +
		time.Duration(data[offUptimeHours])*time.Hour +
		time.Duration(data[offUptimeMinutes])*time.Minute +
		time.Duration(data[offUptimeSeconds])*time.Second

	info := &ControllerInfo{
		MAC:             header.MAC,
		Uptime:          uptime,
		Mode:            decodeMode(data[offMode]),
		Alert:           decodeAlert(data[offAlert]),
		IPType:          decodeIPType(data[offIPType]),
		IPAddr:          net.IPv4(data[offIPAddr], data[offIPAddr+1], data[offIPAddr+2], data[offIPAddr+3]),
		Gateway:         net.IPv4(data[offGateway], data[offGateway+1], data[offGateway+2], data[offGateway+3]),
		AppVersion:      decodeVersion(data[offAppVersion:]),
		BootVersion:     decodeVersion(data[offBootVersion:]),
		HardwareVersion: decodeVersion(data[offHWVersion:]),
	}
	copy(info.Netmask[:], data[offNetmask:offNetmask+4])
	copy(info.RawName[:], data[offName:offName+NameLength])

	return info, nil
}

// Unrecognized byte values collapse into the catch-all variant, matching
// controller firmware behavior.

func decodeMode(b byte) ControllerMode {
	if b == 0 {
		return ModeBootloader
	}
	return ModeApplication
}

func decodeAlert(b byte) ControllerAlert {
	switch b {
	case 0:
		return AlertOk
	case 1:
		return AlertWarning
	default:
		return AlertError
	}
}

func decodeIPType(b byte) ControllerIPType {
	if b == 0 {
		return IPTypeDynamic
	}
	return IPTypeStatic
}

func decodeVersion(data []byte) Version {
	return Version{
		Major:  data[0],
		Minor:  data[1],
		Patch:  data[2],
		Bugfix: data[3],
	}
}
