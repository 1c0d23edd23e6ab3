// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToUTF16(t *testing.T) {
	for _, tt := range []struct {
		s    string
		want []byte
	}{
		{"", []byte{0x00, 0x00}},
		{`\`, []byte{0x5c, 0x00, 0x00, 0x00}},
		{"A€", []byte{0x41, 0x00, 0xac, 0x20, 0x00, 0x00}},
		{"\U0001f600", []byte{0x3d, 0xd8, 0x00, 0xde, 0x00, 0x00}},
	} {
		if diff := cmp.Diff(tt.want, toUTF16(tt.s)); diff != "" {
			t.Errorf("toUTF16(%q) mismatch (-want +got):\n%s", tt.s, diff)
		}
	}
}

func TestFromUTF16(t *testing.T) {
	for _, s := range []string{"", "linux.efi", `\EFI\Linux\chainboot.efi`, "A€\U0001f600"} {
		if got := fromUTF16(toUTF16(s)); got != s {
			t.Errorf("fromUTF16(toUTF16(%q)) = %q", s, got)
		}
	}

	// unterminated, with trailing odd byte
	if got := fromUTF16([]byte{0x41, 0x00, 0x42, 0x00, 0x43}); got != "AB" {
		t.Errorf("fromUTF16() = %q, want %q", got, "AB")
	}

	// data past the terminator is ignored
	if got := fromUTF16([]byte{0x41, 0x00, 0x00, 0x00, 0x42, 0x00}); got != "A" {
		t.Errorf("fromUTF16() = %q, want %q", got, "A")
	}
}
