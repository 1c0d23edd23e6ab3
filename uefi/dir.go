// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"io"
	"io/fs"
)

// MaxDirEntries is the maximum number of entries returned by [File.ReadDir].
const MaxDirEntries = 1024

// DirEntry implements the [fs.DirEntry] interface for the EFI File Protocol.
type DirEntry struct {
	fi *FileInfo
}

// Name returns the name of the file (or subdirectory) described by the entry.
func (d DirEntry) Name() string {
	return d.fi.name
}

// IsDir reports whether the entry describes a directory.
func (d DirEntry) IsDir() bool {
	return d.fi.IsDir()
}

// Type returns the file type bits.
func (d DirEntry) Type() fs.FileMode {
	return d.fi.Mode().Type()
}

// Info returns the FileInfo for the file or subdirectory described by the entry.
func (d DirEntry) Info() (fs.FileInfo, error) {
	return fs.FileInfo(d.fi), nil
}

// ReadDir reads the contents of the directory and returns a slice of up to n
// DirEntry values in directory order, as described in [fs.ReadDirFile].
// Subsequent calls on the same file will yield further DirEntry values.
func (f *File) ReadDir(n int) (entries []fs.DirEntry, err error) {
	if fi, err := f.Stat(); err != nil || !fi.IsDir() {
		return nil, errors.New("not a directory")
	}

	limit := MaxDirEntries - f.n

	if n > 0 && n < limit {
		limit = n
	}

	for len(entries) < limit {
		buf := make([]byte, fileInfoSize+MaxFileName*2)

		// EFI_FILE_PROTOCOL.Read() returns one entry per call on
		// directories, a zero size marks the end of the directory.
		if _, err = f.Read(buf); err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		entry := DirEntry{
			fi: &FileInfo{},
		}

		if err = entry.fi.decode(buf); err != nil {
			return
		}

		if name := entry.fi.name; name == "." || name == ".." {
			continue
		}

		entries = append(entries, fs.DirEntry(entry))
	}

	f.n += len(entries)

	if n > 0 && len(entries) == 0 {
		return nil, io.EOF
	}

	return entries, nil
}
