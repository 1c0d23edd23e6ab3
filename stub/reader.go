// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package stub

import (
	"fmt"
	"io"
	"io/fs"
)

// ReadAll reads an opened file from its current position to its end.
//
// The buffer is sized after the file information, reads returning fewer bytes
// than requested are repeated until the buffer is filled or no further data
// is returned. Any read error is fatal and no data is returned.
func ReadAll(f fs.File) (buf []byte, err error) {
	fi, err := f.Stat()

	if err != nil {
		return nil, fmt.Errorf("could not stat file, %w", err)
	}

	name := fi.Name()
	size := fi.Size()

	if size < 0 {
		return nil, fmt.Errorf("could not read %s, invalid size %d", name, size)
	}

	if s, ok := f.(io.Seeker); ok {
		pos, err := s.Seek(0, io.SeekCurrent)

		if err != nil {
			return nil, fmt.Errorf("could not read %s, %w", name, err)
		}

		if pos > size {
			pos = size
		}

		size -= pos
	}

	buf = make([]byte, size)

	for off := 0; off < len(buf); {
		n, err := f.Read(buf[off:])

		off += n

		if err == io.EOF || (n == 0 && err == nil) {
			// short file
			buf = buf[:off]
			break
		}

		if err != nil {
			return nil, fmt.Errorf("could not read %s, %w", name, err)
		}
	}

	return
}

// readFile opens and reads the named file.
func readFile(fsys fs.FS, name string) (buf []byte, err error) {
	f, err := fsys.Open(name)

	if err != nil {
		return
	}

	defer f.Close()

	if buf, err = ReadAll(f); err != nil {
		return nil, err
	}

	return
}
