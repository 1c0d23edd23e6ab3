// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"testing"
)

func memoryMapBuf(t *testing.T, descriptorSize int, descs ...*MemoryDescriptor) []byte {
	t.Helper()

	var buf []byte

	for _, d := range descs {
		b, err := marshalBinary(d)

		if err != nil {
			t.Fatal(err)
		}

		buf = append(buf, b...)
		buf = append(buf, make([]byte, descriptorSize-len(b))...)
	}

	return buf
}

func TestMemoryMap(t *testing.T) {
	descs := []*MemoryDescriptor{
		{Type: EfiLoaderCode, PhysicalStart: 0x100000, NumberOfPages: 16},
		{Type: EfiConventionalMemory, PhysicalStart: 0x110000, NumberOfPages: 0x1000, Attribute: 0xf},
	}

	buf := memoryMapBuf(t, 48, descs...)

	m := &MemoryMap{
		MapSize:        uint64(len(buf)),
		DescriptorSize: 48,
		buf:            append(buf, make([]byte, 100)...),
	}

	if err := m.parse(); err != nil {
		t.Fatal(err)
	}

	if len(m.Descriptors) != len(descs) {
		t.Fatalf("got %d descriptors, want %d", len(m.Descriptors), len(descs))
	}

	for i, d := range m.Descriptors {
		want := descs[i]

		if d.Type != want.Type || d.PhysicalStart != want.PhysicalStart ||
			d.NumberOfPages != want.NumberOfPages || d.Attribute != want.Attribute {
			t.Errorf("descriptor %d = %+v, want %+v", i, d, want)
		}
	}

	if end := m.Descriptors[0].PhysicalEnd(); end != 0x110000 {
		t.Errorf("PhysicalEnd() = %#x", end)
	}

	if size := m.Descriptors[0].Size(); size != 16*PageSize {
		t.Errorf("Size() = %d", size)
	}
}

func TestMemoryMapInvalid(t *testing.T) {
	buf := memoryMapBuf(t, 48, &MemoryDescriptor{})

	for _, m := range []*MemoryMap{
		{MapSize: 48, DescriptorSize: 32, buf: buf},
		{MapSize: 96, DescriptorSize: 48, buf: buf},
	} {
		if err := m.parse(); err == nil {
			t.Errorf("parse() with size %d/%d succeeded", m.MapSize, m.DescriptorSize)
		}
	}
}

func TestPages(t *testing.T) {
	for size, want := range map[int]uint64{
		0:            0,
		1:            1,
		PageSize:     1,
		PageSize + 1: 2,
		1 << 20:      256,
	} {
		if got := pages(size); got != want {
			t.Errorf("pages(%d) = %d, want %d", size, got, want)
		}
	}
}

func TestConsoleDetached(t *testing.T) {
	c := &Console{ForceLine: true, ReplaceTabs: 8}

	if n, err := c.Write([]byte("chainboot\t\n")); err != nil || n != 11 {
		t.Errorf("Write() = %d, %v", n, err)
	}

	if err := c.ClearScreen(); err != nil {
		t.Errorf("ClearScreen() = %v", err)
	}
}
