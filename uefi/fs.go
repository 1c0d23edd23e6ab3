// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"fmt"
	"io/fs"
)

const (
	EFI_LOADED_IMAGE_PROTOCOL_REVISION       = 0x00001000
	EFI_SIMPLE_FILE_SYSTEM_PROTOCOL_REVISION = 0x00010000
)

// loadedImage represents an EFI Loaded Image Protocol instance.
type loadedImage struct {
	Revision        uint32
	_               uint32
	ParentHandle    uint64
	SystemTable     uint64
	DeviceHandle    uint64
	FilePath        uint64
	_               uint64
	LoadOptionsSize uint32
	_               uint32
	LoadOptions     uint64
	ImageBase       uint64
	ImageSize       uint64
	ImageCodeType   uint32
	ImageDataType   uint32
	Unload          uint64
}

// simpleFileSystem represents an EFI Simple File System Protocol instance.
type simpleFileSystem struct {
	Revision   uint64
	OpenVolume uint64
}

// openVolume calls EFI_SIMPLE_FILE SYSTEM_PROTOCOL.OpenVolume().
func (root *simpleFileSystem) openVolume(handle uint64) (f *fileProtocol, addr uint64, err error) {
	status := callService(ptrval(&root.OpenVolume),
		[]uint64{
			handle,
			ptrval(&addr),
		},
	)

	if err = parseStatus(status); err != nil {
		return
	}

	if f, err = newFileProtocol(addr); err != nil {
		return nil, 0, err
	}

	return
}

// FS implements the [fs.FS] interface for an EFI Simple File System.
type FS struct {
	image *loadedImage
	addr  uint64

	fs     *simpleFileSystem
	volume *File
}

// Open opens the named file for reading, [File.Close] must be called to
// release any associated resources.
//
// The name is interpreted by the firmware, therefore it follows EFI path
// conventions (e.g. `\EFI\BOOT\BOOTX64.EFI`) rather than [fs.ValidPath].
func (root *FS) Open(name string) (fs.File, error) {
	var err error

	f := &File{
		name: name,
	}

	if root.volume == nil || root.volume.file == nil || root.volume.addr == 0 {
		return nil, errors.New("invalid file system instance")
	}

	if f.file, f.addr, err = root.volume.file.open(root.volume.addr, name, EFI_FILE_MODE_READ); err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	return fs.File(f), nil
}

// Close releases the volume root directory, files opened through [FS.Open]
// are not affected.
func (root *FS) Close() error {
	if root.volume == nil {
		return nil
	}

	err := root.volume.Close()
	root.volume = nil

	return err
}

// Device returns the EFI handle of the device holding the file system.
func (root *FS) Device() uint64 {
	if root.image == nil {
		return 0
	}

	return root.image.DeviceHandle
}

func (s *BootServices) loadImageHandle(imageHandle uint64) (image *loadedImage, err error) {
	var addr uint64

	if addr, err = s.HandleProtocol(imageHandle, EFI_LOADED_IMAGE_PROTOCOL_GUID); err != nil {
		return
	}

	image = &loadedImage{}

	if err = decode(image, addr); err != nil {
		return
	}

	if image.Revision != EFI_LOADED_IMAGE_PROTOCOL_REVISION {
		return nil, errors.New("invalid protocol revision")
	}

	return
}

// Root returns an EFI Simple File System instance for the root volume of the
// device the argument image was loaded from.
func (s *BootServices) Root(imageHandle uint64) (root *FS, err error) {
	root = &FS{
		fs:     &simpleFileSystem{},
		volume: &File{name: `\`},
	}

	if root.image, err = s.loadImageHandle(imageHandle); err != nil {
		return nil, err
	}

	if root.addr, err = s.HandleProtocol(root.image.DeviceHandle, EFI_SIMPLE_FILE_SYSTEM_PROTOCOL_GUID); err != nil {
		return nil, err
	}

	if err = decode(root.fs, root.addr); err != nil {
		return nil, err
	}

	if root.fs.Revision != EFI_SIMPLE_FILE_SYSTEM_PROTOCOL_REVISION {
		return nil, fmt.Errorf("invalid protocol revision (%#x)", root.fs.Revision)
	}

	if root.volume.file, root.volume.addr, err = root.fs.openVolume(root.addr); err != nil {
		return nil, err
	}

	return
}

// LoadedImage represents an EFI Loaded Image Protocol instance opened through
// [BootServices.OpenLoadedImage].
type LoadedImage struct {
	// DeviceHandle is the device handle the image was loaded from.
	DeviceHandle uint64
	// FilePath is the address of the image file path device path, 0
	// when the image was loaded from a buffer.
	FilePath uint64
	// ImageBase is the image load address.
	ImageBase uint64
	// ImageSize is the image size in bytes.
	ImageSize uint64

	s          *BootServices
	handle     uint64
	agent      uint64
	controller uint64
}

// OpenLoadedImage opens the EFI Loaded Image Protocol of the argument image,
// with the current image as agent.
//
// On some firmware implementations shared access results in
// EFI_ACCESS_DENIED, therefore EFI_OPEN_PROTOCOL_EXCLUSIVE is typically
// required.
func (s *BootServices) OpenLoadedImage(imageHandle uint64, attributes uint32) (image *LoadedImage, err error) {
	addr, err := s.OpenProtocol(imageHandle, EFI_LOADED_IMAGE_PROTOCOL_GUID, s.imageHandle, 0, attributes)

	if err != nil {
		return
	}

	image = &LoadedImage{
		s:      s,
		handle: imageHandle,
		agent:  s.imageHandle,
	}

	li := &loadedImage{}

	if err = decode(li, addr); err == nil && li.Revision != EFI_LOADED_IMAGE_PROTOCOL_REVISION {
		err = errors.New("invalid protocol revision")
	}

	if err != nil {
		image.Close()
		return nil, err
	}

	image.DeviceHandle = li.DeviceHandle
	image.FilePath = li.FilePath
	image.ImageBase = li.ImageBase
	image.ImageSize = li.ImageSize

	return
}

// DevicePath returns the address of the image file path device path.
func (image *LoadedImage) DevicePath() uint64 {
	return image.FilePath
}

// Close calls EFI_BOOT_SERVICES.CloseProtocol() on the Loaded Image Protocol
// instance.
func (image *LoadedImage) Close() error {
	if image.s == nil {
		return nil
	}

	err := image.s.CloseProtocol(image.handle, EFI_LOADED_IMAGE_PROTOCOL_GUID, image.agent, image.controller)
	image.s = nil

	return err
}
