// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package pe implements lookup of named sections within Portable Executable
// (PE/COFF) images, following the specifications at:
//
//	https://learn.microsoft.com/en-us/windows/win32/debug/pe-format
//
// Images are treated as untrusted input, malformed headers or out of bounds
// sections are reported as absent rather than as errors.
package pe

import (
	"bytes"
	"encoding/binary"
	"strings"
)

const (
	// DOS header magic ("MZ")
	dosMagic = 0x5a4d
	// DOS header e_lfanew offset
	lfanewOffset = 0x3c
	// PE signature ("PE\0\0")
	peSignature = 0x00004550

	// COFF file header size
	fileHeaderSize = 20
	// IMAGE_SECTION_HEADER size
	sectionHeaderSize = 40

	// NameSize is the size of the IMAGE_SECTION_HEADER Name field.
	NameSize = 8
)

// SectionHeader represents an IMAGE_SECTION_HEADER instance.
type SectionHeader struct {
	Name             [NameSize]byte
	VirtualSize      uint32
	VirtualAddress   uint32
	SizeOfRawData    uint32
	PointerToRawData uint32
}

func (h *SectionHeader) decode(buf []byte) {
	copy(h.Name[:], buf[0:NameSize])
	h.VirtualSize = binary.LittleEndian.Uint32(buf[8:12])
	h.VirtualAddress = binary.LittleEndian.Uint32(buf[12:16])
	h.SizeOfRawData = binary.LittleEndian.Uint32(buf[16:20])
	h.PointerToRawData = binary.LittleEndian.Uint32(buf[20:24])
}

// Size returns the section size within the file. The virtual size is
// preferred, when valid, as raw data is padded to the file alignment.
func (h *SectionHeader) Size() uint32 {
	if h.VirtualSize > 0 && h.VirtualSize <= h.SizeOfRawData {
		return h.VirtualSize
	}

	return h.SizeOfRawData
}

// String returns the section name without NUL padding.
func (h *SectionHeader) String() string {
	name, _, _ := bytes.Cut(h.Name[:], []byte{0x00})
	return string(name)
}

// match reports whether the NUL padded name field equals the argument name.
func (h *SectionHeader) match(name string) bool {
	if len(name) == 0 || len(name) > NameSize || strings.IndexByte(name, 0x00) >= 0 {
		return false
	}

	for i := 0; i < NameSize; i++ {
		var c byte

		if i < len(name) {
			c = name[i]
		}

		if h.Name[i] != c {
			return false
		}
	}

	return true
}

// sectionTable returns the section table entries, or false when the headers
// are malformed.
func sectionTable(buf []byte) (table []byte, ok bool) {
	size := uint64(len(buf))

	if size < lfanewOffset+4 {
		return
	}

	if binary.LittleEndian.Uint16(buf[0:2]) != dosMagic {
		return
	}

	off := uint64(binary.LittleEndian.Uint32(buf[lfanewOffset:]))

	if off+4+fileHeaderSize > size {
		return
	}

	if binary.LittleEndian.Uint32(buf[off:]) != peSignature {
		return
	}

	off += 4
	fileHeader := buf[off : off+fileHeaderSize]

	numberOfSections := uint64(binary.LittleEndian.Uint16(fileHeader[2:4]))
	sizeOfOptionalHeader := uint64(binary.LittleEndian.Uint16(fileHeader[16:18]))

	start := off + fileHeaderSize + sizeOfOptionalHeader
	end := start + numberOfSections*sectionHeaderSize

	if end > size {
		return
	}

	return buf[start:end], true
}

// Section returns the contents of the first section matching the argument
// name, the returned slice references the argument buffer.
//
// Names are compared against the 8 bytes NUL padded section header field,
// therefore names longer than 8 bytes, or containing NUL, are never found.
// A section whose contents exceed the buffer is treated as absent.
func Section(buf []byte, name string) (data []byte, ok bool) {
	var h SectionHeader

	table, ok := sectionTable(buf)

	if !ok {
		return nil, false
	}

	for i := 0; i+sectionHeaderSize <= len(table); i += sectionHeaderSize {
		h.decode(table[i : i+sectionHeaderSize])

		if !h.match(name) {
			continue
		}

		start := uint64(h.PointerToRawData)
		end := start + uint64(h.Size())

		if end > uint64(len(buf)) {
			return nil, false
		}

		return buf[start:end:end], true
	}

	return nil, false
}

// Sections returns the section headers of the argument image, or nil when
// its headers are malformed.
func Sections(buf []byte) (headers []*SectionHeader) {
	table, ok := sectionTable(buf)

	if !ok {
		return
	}

	for i := 0; i+sectionHeaderSize <= len(table); i += sectionHeaderSize {
		h := &SectionHeader{}
		h.decode(table[i : i+sectionHeaderSize])
		headers = append(headers, h)
	}

	return
}

// Names returns the section names of the argument image.
func Names(buf []byte) (names []string) {
	for _, h := range Sections(buf) {
		names = append(names, h.String())
	}

	return
}
