// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	bufferSize = (1 << 12)
	maxDepth   = 16
)

// Device Path node types
const (
	HardwareDevicePath  = 0x01
	ACPIDevicePath      = 0x02
	MessagingDevicePath = 0x03
	MediaDevicePath     = 0x04
	BBSDevicePath       = 0x05
	EndDevicePath       = 0x7f
)

// Device Path node sub-types
const (
	MediaFilePathSubType = 0x04
	EndEntireSubType     = 0xff
)

// EFI Device Path To Text Protocol offsets
const convertDevicePathToText = 0x08

// DevicePathNode represents an EFI Generic Device Path Node structure.
type DevicePathNode struct {
	Type    uint8
	SubType uint8
	Length  uint16
}

// Bytes converts the descriptor structure to byte array format.
func (d *DevicePathNode) Bytes() []byte {
	buf := new(bytes.Buffer)

	binary.Write(buf, binary.LittleEndian, d.Type)
	binary.Write(buf, binary.LittleEndian, d.SubType)
	binary.Write(buf, binary.LittleEndian, d.Length)

	return buf.Bytes()
}

// DevicePath represents an EFI Device Path Protocol node.
type DevicePath struct {
	DevicePathNode
	Data []byte
}

// ParseDevicePath parses an EFI Device Path instance, up to its End Entire
// Device Path node, and returns its nodes along with the descriptor size.
func ParseDevicePath(buf []byte) (devicePath []*DevicePath, size int, err error) {
	off := 0

	for i := 0; i <= maxDepth; i++ {
		if i == maxDepth {
			return nil, 0, errors.New("device path nodes limit exceeded")
		}

		node := &DevicePathNode{}

		if off+4 > len(buf) {
			return nil, 0, errors.New("truncated device path")
		}

		if err = unmarshalBinary(buf[off:off+4], node); err != nil {
			return nil, 0, err
		}

		if node.Length < 4 || off+int(node.Length) > len(buf) {
			return nil, 0, errors.New("invalid length")
		}

		off += 4

		if node.Type == EndDevicePath && node.SubType == EndEntireSubType {
			break
		}

		d := &DevicePath{
			DevicePathNode: *node,
			Data:           make([]byte, node.Length-4),
		}

		copy(d.Data, buf[off:off+len(d.Data)])
		off += len(d.Data)

		devicePath = append(devicePath, d)
	}

	return devicePath, off, nil
}

// FilePath returns the path name of a File Path Media Device Path node.
func (d *DevicePath) FilePath() (string, bool) {
	if d.Type != MediaDevicePath || d.SubType != MediaFilePathSubType {
		return "", false
	}

	return fromUTF16(d.Data), true
}

// While we could rely on UEFI functions alone, we prefer to have control on
// this parsing given that UEFI firmware does not handle gracefully invalid
// pointers (e.g. DoS condition).
func readDevicePath(addr uint64) (devicePath []*DevicePath, err error) {
	buf, err := read(addr, bufferSize)

	if err != nil {
		return
	}

	devicePath, _, err = ParseDevicePath(buf)

	return
}

// DevicePathToText calls EFI_DEVICE_PATH_TO_TEXT_PROTOCOL.ConvertDevicePathToText()
// on the device path at the argument address.
//
// The protocol is located on the first supporting handle and opened
// exclusively with the current image as agent.
func (s *BootServices) DevicePathToText(devicePath uint64, displayOnly bool, allowShortcuts bool) (text string, err error) {
	var handle uint64
	var addr uint64

	if _, err = readDevicePath(devicePath); err != nil {
		return
	}

	if handle, err = s.HandleForProtocol(EFI_DEVICE_PATH_TO_TEXT_PROTOCOL_GUID); err != nil {
		return
	}

	if addr, err = s.OpenProtocol(handle, EFI_DEVICE_PATH_TO_TEXT_PROTOCOL_GUID, s.imageHandle, 0, EFI_OPEN_PROTOCOL_EXCLUSIVE); err != nil {
		return
	}

	defer s.CloseProtocol(handle, EFI_DEVICE_PATH_TO_TEXT_PROTOCOL_GUID, s.imageHandle, 0)

	fn := addr + convertDevicePathToText

	// returns CHAR16* rather than EFI_STATUS
	ptr := callService(fn,
		[]uint64{
			devicePath,
			boolval(displayOnly),
			boolval(allowShortcuts),
		},
	)

	if ptr == 0 {
		return "", Status(ErrorStatus(EFI_OUT_OF_RESOURCES))
	}

	defer s.FreePool(ptr)

	return readUTF16(ptr)
}

func boolval(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}
