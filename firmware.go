// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"github.com/usbarmory/chainboot/stub"
	"github.com/usbarmory/chainboot/uefi"
)

// firmware implements stub.Firmware over EFI Boot Services.
type firmware struct {
	*uefi.BootServices
}

func (fw *firmware) Volume(imageHandle uint64) (stub.Volume, error) {
	root, err := fw.Root(imageHandle)

	if err != nil {
		return nil, err
	}

	return root, nil
}

func (fw *firmware) LoadedImage(imageHandle uint64) (stub.LoadedImage, error) {
	image, err := fw.OpenLoadedImage(imageHandle, uefi.EFI_OPEN_PROTOCOL_EXCLUSIVE)

	if err != nil {
		return nil, err
	}

	return image, nil
}

// LoadImage loads an image from memory, without device path association.
func (fw *firmware) LoadImage(buf []byte) (uint64, error) {
	return fw.BootServices.LoadImage(0, nil, buf)
}
