// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package stub

import (
	"io"
	"io/fs"
)

// Firmware represents the boot services consumed by the stub.
type Firmware interface {
	// Volume opens the root directory of the file system holding the
	// argument image.
	Volume(imageHandle uint64) (Volume, error)

	// LoadedImage opens, with exclusive access, the loaded image
	// information of the argument image.
	LoadedImage(imageHandle uint64) (LoadedImage, error)

	// DevicePathToText converts the device path at the argument address
	// to its text representation.
	DevicePathToText(devicePath uint64, displayOnly bool, allowShortcuts bool) (string, error)

	// LoadImage loads an EFI image from a memory buffer, without any
	// device path association.
	LoadImage(buf []byte) (imageHandle uint64, err error)

	// StartImage transfers control to a loaded image, on success it does
	// not return until the image exits.
	StartImage(imageHandle uint64) error

	// UnloadImage unloads a loaded image.
	UnloadImage(imageHandle uint64) error
}

// Volume represents the root directory of an opened file system, files opened
// through it outlive Close.
type Volume interface {
	fs.FS
	io.Closer
}

// LoadedImage represents the loaded image information of an EFI image.
type LoadedImage interface {
	// DevicePath returns the address of the image file device path, 0
	// when none is available.
	DevicePath() uint64

	io.Closer
}

// Console represents the firmware text console.
type Console interface {
	io.Writer

	// ClearScreen clears the console.
	ClearScreen() error
}
