// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
)

const (
	EFI_FILE_PROTOCOL_REVISION  = 0x00010000
	EFI_FILE_PROTOCOL_REVISION2 = 0x00020000
)

// EFI_FILE_PROTOCOL.Open() modes
const (
	EFI_FILE_MODE_READ   = 0x0000000000000001
	EFI_FILE_MODE_WRITE  = 0x0000000000000002
	EFI_FILE_MODE_CREATE = 0x8000000000000000
)

// fileProtocol represents an EFI File Protocol instance.
type fileProtocol struct {
	Revision    uint64
	Open        uint64
	Close       uint64
	Delete      uint64
	Read        uint64
	Write       uint64
	GetPosition uint64
	SetPosition uint64
	GetInfo     uint64
	SetInfo     uint64
	Flush       uint64
}

func newFileProtocol(addr uint64) (f *fileProtocol, err error) {
	f = &fileProtocol{}

	if err = decode(f, addr); err != nil {
		return nil, err
	}

	if f.Revision != EFI_FILE_PROTOCOL_REVISION && f.Revision != EFI_FILE_PROTOCOL_REVISION2 {
		return nil, fmt.Errorf("invalid protocol revision (%#x)", f.Revision)
	}

	return
}

// open calls EFI_FILE_PROTOCOL.Open().
func (fp *fileProtocol) open(handle uint64, name string, mode uint64) (f *fileProtocol, addr uint64, err error) {
	fileName := toUTF16(name)

	status := callService(ptrval(&fp.Open),
		[]uint64{
			handle,
			ptrval(&addr),
			ptrval(&fileName[0]),
			mode,
			0,
		},
	)

	if err = parseStatus(status); err != nil {
		return
	}

	if f, err = newFileProtocol(addr); err != nil {
		fp.close(addr)
		return nil, 0, err
	}

	return
}

// close calls EFI_FILE_PROTOCOL.Close().
func (fp *fileProtocol) close(handle uint64) (err error) {
	status := callService(ptrval(&fp.Close),
		[]uint64{
			handle,
		},
	)

	return parseStatus(status)
}

// read calls EFI_FILE_PROTOCOL.Read().
func (fp *fileProtocol) read(handle uint64, buf []byte) (n int, err error) {
	size := uint64(len(buf))

	status := callService(ptrval(&fp.Read),
		[]uint64{
			handle,
			ptrval(&size),
			ptrval(&buf[0]),
		},
	)

	if err = parseStatus(status); err != nil {
		return
	}

	if size > uint64(len(buf)) {
		return 0, errors.New("invalid read size")
	}

	return int(size), nil
}

// getPosition calls EFI_FILE_PROTOCOL.GetPosition().
func (fp *fileProtocol) getPosition(handle uint64) (pos uint64, err error) {
	status := callService(ptrval(&fp.GetPosition),
		[]uint64{
			handle,
			ptrval(&pos),
		},
	)

	return pos, parseStatus(status)
}

// setPosition calls EFI_FILE_PROTOCOL.SetPosition().
func (fp *fileProtocol) setPosition(handle uint64, pos uint64) (err error) {
	status := callService(ptrval(&fp.SetPosition),
		[]uint64{
			handle,
			pos,
		},
	)

	return parseStatus(status)
}

// getInfo calls EFI_FILE_PROTOCOL.GetInfo() for EFI_FILE_INFO.
func (fp *fileProtocol) getInfo(handle uint64) (buf []byte, err error) {
	size := uint64(fileInfoSize + MaxFileName*2)

	for range 2 {
		buf = make([]byte, size)

		status := callService(ptrval(&fp.GetInfo),
			[]uint64{
				handle,
				EFI_FILE_INFO_ID.ptrval(),
				ptrval(&size),
				ptrval(&buf[0]),
			},
		)

		// retry once with the size requested by the firmware
		if status&0xff == EFI_BUFFER_TOO_SMALL && status&errorBit != 0 {
			continue
		}

		if err = parseStatus(status); err != nil {
			return nil, err
		}

		if size > uint64(len(buf)) {
			return nil, errors.New("invalid info size")
		}

		return buf[:size], nil
	}

	return nil, Status(ErrorStatus(EFI_BUFFER_TOO_SMALL))
}

// File implements the [fs.File] interface for the EFI File Protocol.
type File struct {
	name string
	file *fileProtocol
	addr uint64

	// directory entries read so far
	n int
}

// Stat returns a [fs.FileInfo] describing the file.
func (f *File) Stat() (fs.FileInfo, error) {
	if f.file == nil {
		return nil, fs.ErrClosed
	}

	buf, err := f.file.getInfo(f.addr)

	if err != nil {
		return nil, err
	}

	fi := &FileInfo{}

	if err = fi.decode(buf); err != nil {
		return nil, err
	}

	return fi, nil
}

// Read reads up to len(p) bytes into p, the firmware might return fewer
// bytes than requested. At end of file it returns 0, [io.EOF].
func (f *File) Read(p []byte) (n int, err error) {
	if f.file == nil {
		return 0, fs.ErrClosed
	}

	if len(p) == 0 {
		return
	}

	if n, err = f.file.read(f.addr, p); err != nil {
		return 0, &fs.PathError{Op: "read", Path: f.name, Err: err}
	}

	if n == 0 {
		return 0, io.EOF
	}

	return
}

// Seek implements the [io.Seeker] interface.
func (f *File) Seek(offset int64, whence int) (pos int64, err error) {
	var cur uint64

	if f.file == nil {
		return 0, fs.ErrClosed
	}

	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		if cur, err = f.file.getPosition(f.addr); err != nil {
			return
		}

		pos = int64(cur) + offset
	case io.SeekEnd:
		fi, err := f.Stat()

		if err != nil {
			return 0, err
		}

		pos = fi.Size() + offset
	default:
		return 0, errors.New("invalid whence")
	}

	if pos < 0 {
		return 0, errors.New("negative position")
	}

	return pos, f.file.setPosition(f.addr, uint64(pos))
}

// Close calls EFI_FILE_PROTOCOL.Close().
func (f *File) Close() (err error) {
	if f.file == nil {
		return fs.ErrClosed
	}

	err = f.file.close(f.addr)
	f.file = nil

	return
}
