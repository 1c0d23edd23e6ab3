// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"unicode/utf16"
)

// EFI Simple Text Output Protocol offsets
const (
	outputString = 0x08
	clearScreen  = 0x30
)

// Console implements the [io.Writer] interface over EFI Simple Text Output
// protocol.
type Console struct {
	// ForceLine controls whether line feeds (LF) should be supplemented
	// with a carriage return (CR).
	ForceLine bool

	// ReplaceTabs controls whether Console I/O output should have Tab
	// characters replaced with a number of spaces.
	ReplaceTabs int

	// Out is the EFI Simple Text Output Protocol instance address.
	Out uint64
}

// Output calls EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL.OutputString() with a UCS-2
// byte array.
func (c *Console) Output(p []byte) (status uint64) {
	if c.Out == 0 || len(p) == 0 {
		return
	}

	if len(p) < 2 || p[len(p)-2] != 0x00 || p[len(p)-1] != 0x00 {
		p = append(p, 0x00, 0x00)
	}

	return callService(c.Out+outputString,
		[]uint64{
			c.Out,
			ptrval(&p[0]),
		},
	)
}

// ClearScreen calls EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL.ClearScreen().
func (c *Console) ClearScreen() (err error) {
	if c.Out == 0 {
		return
	}

	status := callService(c.Out+clearScreen,
		[]uint64{
			c.Out,
		},
	)

	return parseStatus(status)
}

// Write data from buffer to console.
func (c *Console) Write(p []byte) (n int, err error) {
	var s []byte

	if len(p) == 0 {
		return
	}

	// We receive an UTF-8 string but we can output only UCS-2 ones.
	b := utf16.Encode([]rune(string(p)))

	for _, r := range b {
		if r == 0x09 && c.ReplaceTabs > 0 { // Tab
			for i := 0; i < c.ReplaceTabs; i++ {
				s = append(s, 0x20, 0x00) // Space
			}
			continue
		}

		s = append(s, byte(r&0xff), byte(r>>8))

		if r == 0x0a && c.ForceLine { // LF
			s = append(s, 0x0d, 0x00) // CR
		}
	}

	if err = parseStatus(c.Output(s)); err != nil {
		return
	}

	return len(p), nil
}
