// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

// EFI Boot Services offsets
const (
	loadImage   = 0xc8
	startImage  = 0xd0
	unloadImage = 0xe0
)

// LoadImage calls EFI_BOOT_SERVICES.LoadImage() with the argument buffer as
// source image, the device path is optional and can be nil when the image has
// no on-disk association.
func (s *BootServices) LoadImage(boot int, devicePath []byte, buf []byte) (imageHandle uint64, err error) {
	var filePath uint64
	var source uint64

	if len(devicePath) > 0 {
		filePath = ptrval(&devicePath[0])
	}

	// an empty buffer is passed as NULL and rejected by the firmware
	if len(buf) > 0 {
		source = ptrval(&buf[0])
	}

	status := callService(s.base+loadImage,
		[]uint64{
			uint64(boot),
			s.imageHandle,
			filePath,
			source,
			uint64(len(buf)),
			ptrval(&imageHandle),
		},
	)

	return imageHandle, parseStatus(status)
}

// StartImage calls EFI_BOOT_SERVICES.StartImage(), on success it does not
// return until the started image exits.
func (s *BootServices) StartImage(imageHandle uint64) (err error) {
	status := callService(s.base+startImage,
		[]uint64{
			imageHandle,
			0,
			0,
		},
	)

	return parseStatus(status)
}

// UnloadImage calls EFI_BOOT_SERVICES.UnloadImage().
func (s *BootServices) UnloadImage(imageHandle uint64) (err error) {
	status := callService(s.base+unloadImage,
		[]uint64{
			imageHandle,
		},
	)

	return parseStatus(status)
}
