// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
)

// maximum length of firmware allocated strings
const maxStringSize = 4096

// toUTF16 converts a string to a NUL terminated UCS-2 byte array.
func toUTF16(s string) (buf []byte) {
	for _, r := range utf16.Encode([]rune(s)) {
		buf = binary.LittleEndian.AppendUint16(buf, r)
	}

	return append(buf, 0x00, 0x00)
}

// fromUTF16 converts a UCS-2 byte array, terminated by NUL or by its end, to
// a string.
func fromUTF16(buf []byte) string {
	var s []uint16

	for i := 0; i+1 < len(buf); i += 2 {
		c := binary.LittleEndian.Uint16(buf[i : i+2])

		if c == 0x0000 {
			break
		}

		s = append(s, c)
	}

	return string(utf16.Decode(s))
}

// readUTF16 decodes a NUL terminated UCS-2 string from firmware memory.
func readUTF16(addr uint64) (s string, err error) {
	buf, err := read(addr, maxStringSize)

	if err != nil {
		return
	}

	for i := 0; i+1 < len(buf); i += 2 {
		if buf[i] == 0x00 && buf[i+1] == 0x00 {
			return fromUTF16(buf[:i]), nil
		}
	}

	return "", errors.New("string exceeds maximum size")
}
