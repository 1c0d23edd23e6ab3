// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
)

const (
	// EFI Boot Services offset for GetMemoryMap
	getMemoryMap = 0x38
	maxEntries   = 1000
)

// PageSize represents the EFI page size in bytes
const PageSize = 4096 // 4 KiB

// MemoryDescriptor represents an EFI Memory Descriptor
type MemoryDescriptor struct {
	Type          uint32
	_             uint32
	PhysicalStart uint64
	VirtualStart  uint64
	NumberOfPages uint64
	Attribute     uint64
}

// PhysicalEnd returns the descriptor physical end address.
func (d *MemoryDescriptor) PhysicalEnd() uint64 {
	return d.PhysicalStart + d.NumberOfPages*PageSize
}

// Size returns the descriptor size.
func (d *MemoryDescriptor) Size() int {
	return int(d.NumberOfPages * PageSize)
}

// MemoryMap represents an EFI Memory Map
type MemoryMap struct {
	MapSize           uint64
	Descriptors       []*MemoryDescriptor
	MapKey            uint64
	DescriptorSize    uint64
	DescriptorVersion uint32

	buf []byte
}

// parse decodes the memory map buffer, the firmware descriptor size can be
// larger than [MemoryDescriptor].
func (m *MemoryMap) parse() (err error) {
	d := &MemoryDescriptor{}
	t, _ := marshalBinary(d)

	if m.DescriptorSize < uint64(len(t)) {
		return errors.New("invalid descriptor size")
	}

	if m.MapSize > uint64(len(m.buf)) {
		return errors.New("invalid memory map size")
	}

	m.Descriptors = nil

	for i := uint64(0); i+m.DescriptorSize <= m.MapSize; i += m.DescriptorSize {
		if err = unmarshalBinary(m.buf[i:i+uint64(len(t))], d); err != nil {
			return
		}

		m.Descriptors = append(m.Descriptors, d)
		d = &MemoryDescriptor{}
	}

	return
}

// GetMemoryMap calls EFI_BOOT_SERVICES.GetMemoryMap().
func (s *BootServices) GetMemoryMap() (m *MemoryMap, err error) {
	// allow for firmware descriptors larger than ours
	n := 48

	m = &MemoryMap{
		MapSize: uint64(n * maxEntries),
		buf:     make([]byte, n*maxEntries),
	}

	status := callService(s.base+getMemoryMap,
		[]uint64{
			ptrval(&m.MapSize),
			ptrval(&m.buf[0]),
			ptrval(&m.MapKey),
			ptrval(&m.DescriptorSize),
			ptrval(&m.DescriptorVersion),
		},
	)

	if err = parseStatus(status); err != nil {
		return
	}

	return m, m.parse()
}
