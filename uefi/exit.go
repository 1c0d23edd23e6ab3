// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

// EFI Boot Services offsets
const exit = 0xd8

// Exit calls EFI_BOOT_SERVICES.Exit() to return control to the image loader
// with the argument EFI_STATUS, on success it does not return.
func (s *BootServices) Exit(status uint64) (err error) {
	return parseStatus(callService(s.base+exit,
		[]uint64{
			s.imageHandle,
			status,
			0,
			0,
		},
	))
}
