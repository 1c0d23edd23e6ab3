// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"io/fs"
	"time"
)

const (
	// EFI_FILE_INFO size without FileName
	fileInfoSize = 80

	// MaxFileName is the maximum number of UCS-2 characters supported in
	// EFI_FILE_INFO.FileName.
	MaxFileName = 256
)

// EFI_FILE_INFO attributes
const (
	EFI_FILE_READ_ONLY = 0x01
	EFI_FILE_HIDDEN    = 0x02
	EFI_FILE_SYSTEM    = 0x04
	EFI_FILE_RESERVED  = 0x08
	EFI_FILE_DIRECTORY = 0x10
	EFI_FILE_ARCHIVE   = 0x20
)

// efiTime represents an EFI_TIME instance.
type efiTime struct {
	Year       uint16
	Month      uint8
	Day        uint8
	Hour       uint8
	Minute     uint8
	Second     uint8
	_          uint8
	Nanosecond uint32
	TimeZone   int16
	Daylight   uint8
	_          uint8
}

// EFI_UNSPECIFIED_TIMEZONE
const unspecifiedTimezone = 0x07ff

func (t *efiTime) time() time.Time {
	if t.Year == 0 {
		return time.Time{}
	}

	loc := time.UTC

	if t.TimeZone != unspecifiedTimezone {
		// EFI_TIME.TimeZone is the offset in minutes from local time to UTC
		loc = time.FixedZone("", -int(t.TimeZone)*60)
	}

	return time.Date(int(t.Year), time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Minute), int(t.Second), int(t.Nanosecond), loc)
}

// fileInfo represents an EFI_FILE_INFO instance without FileName.
type fileInfo struct {
	Size             uint64
	FileSize         uint64
	PhysicalSize     uint64
	CreateTime       efiTime
	LastAccessTime   efiTime
	ModificationTime efiTime
	Attribute        uint64
}

func (fi *fileInfo) decode(buf []byte) (name string, err error) {
	if len(buf) < fileInfoSize {
		return "", errors.New("invalid file info size")
	}

	if err = unmarshalBinary(buf[:fileInfoSize], fi); err != nil {
		return
	}

	if fi.Size < fileInfoSize || fi.Size > uint64(len(buf)) {
		return "", errors.New("invalid file info size")
	}

	return fromUTF16(buf[fileInfoSize:fi.Size]), nil
}

// FileInfo implements the [fs.FileInfo] interface for EFI_FILE_INFO.
type FileInfo struct {
	info *fileInfo
	name string
}

func (fi *FileInfo) decode(buf []byte) (err error) {
	fi.info = &fileInfo{}
	fi.name, err = fi.info.decode(buf)
	return
}

// Name returns the base name of the file.
func (fi *FileInfo) Name() string {
	return fi.name
}

// Size returns the file size in bytes.
func (fi *FileInfo) Size() int64 {
	return int64(fi.info.FileSize)
}

// Mode returns the file mode bits.
func (fi *FileInfo) Mode() (mode fs.FileMode) {
	mode = 0444

	if fi.info.Attribute&EFI_FILE_READ_ONLY == 0 {
		mode |= 0222
	}

	if fi.IsDir() {
		mode |= fs.ModeDir | 0111
	}

	return
}

// ModTime returns the modification time.
func (fi *FileInfo) ModTime() time.Time {
	return fi.info.ModificationTime.time()
}

// IsDir reports whether the file is a directory.
func (fi *FileInfo) IsDir() bool {
	return fi.info.Attribute&EFI_FILE_DIRECTORY != 0
}

// Sys returns the EFI_FILE_INFO attributes.
func (fi *FileInfo) Sys() any {
	return fi.info.Attribute
}
