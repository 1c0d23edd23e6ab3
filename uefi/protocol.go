// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
)

// EFI Boot Services offsets
const (
	freePool           = 0x048
	handleProtocol     = 0x098
	openProtocol       = 0x118
	closeProtocol      = 0x120
	locateHandleBuffer = 0x138
	locateProtocol     = 0x140
)

// EFI_OPEN_PROTOCOL attributes
const (
	EFI_OPEN_PROTOCOL_BY_HANDLE_PROTOCOL  = 0x01
	EFI_OPEN_PROTOCOL_GET_PROTOCOL        = 0x02
	EFI_OPEN_PROTOCOL_TEST_PROTOCOL       = 0x04
	EFI_OPEN_PROTOCOL_BY_CHILD_CONTROLLER = 0x08
	EFI_OPEN_PROTOCOL_BY_DRIVER           = 0x10
	EFI_OPEN_PROTOCOL_EXCLUSIVE           = 0x20
)

// EFI_LOCATE_SEARCH_TYPE
const (
	AllHandles = iota
	ByRegisterNotify
	ByProtocol
)

// HandleProtocol calls EFI_BOOT_SERVICES.HandleProtocol().
func (s *BootServices) HandleProtocol(handle uint64, guid GUID) (addr uint64, err error) {
	status := callService(s.base+handleProtocol,
		[]uint64{
			handle,
			guid.ptrval(),
			ptrval(&addr),
		},
	)

	return addr, parseStatus(status)
}

// LocateProtocol calls EFI_BOOT_SERVICES.LocateProtocol().
func (s *BootServices) LocateProtocol(guid GUID) (addr uint64, err error) {
	status := callService(s.base+locateProtocol,
		[]uint64{
			guid.ptrval(),
			0,
			ptrval(&addr),
		},
	)

	return addr, parseStatus(status)
}

// OpenProtocol calls EFI_BOOT_SERVICES.OpenProtocol(), the returned protocol
// must be released with [BootServices.CloseProtocol] using the same handle,
// agent and controller.
func (s *BootServices) OpenProtocol(handle uint64, guid GUID, agent uint64, controller uint64, attributes uint32) (addr uint64, err error) {
	status := callService(s.base+openProtocol,
		[]uint64{
			handle,
			guid.ptrval(),
			ptrval(&addr),
			agent,
			controller,
			uint64(attributes),
		},
	)

	if err = parseStatus(status); err != nil {
		return
	}

	if addr == 0 {
		return 0, Status(ErrorStatus(EFI_UNSUPPORTED))
	}

	return
}

// CloseProtocol calls EFI_BOOT_SERVICES.CloseProtocol().
func (s *BootServices) CloseProtocol(handle uint64, guid GUID, agent uint64, controller uint64) (err error) {
	status := callService(s.base+closeProtocol,
		[]uint64{
			handle,
			guid.ptrval(),
			agent,
			controller,
		},
	)

	return parseStatus(status)
}

// LocateHandleBuffer calls EFI_BOOT_SERVICES.LocateHandleBuffer() to return
// all handles supporting the argument protocol.
func (s *BootServices) LocateHandleBuffer(guid GUID) (handles []uint64, err error) {
	var n uint64
	var addr uint64

	status := callService(s.base+locateHandleBuffer,
		[]uint64{
			ByProtocol,
			guid.ptrval(),
			0,
			ptrval(&n),
			ptrval(&addr),
		},
	)

	if err = parseStatus(status); err != nil {
		return
	}

	defer s.FreePool(addr)

	if n == 0 {
		return nil, Status(ErrorStatus(EFI_NOT_FOUND))
	}

	buf, err := read(addr, int(n)*8)

	if err != nil {
		return
	}

	handles = make([]uint64, n)

	if err = unmarshalBinary(buf, handles); err != nil {
		return nil, err
	}

	return
}

// HandleForProtocol returns the first handle supporting the argument
// protocol.
func (s *BootServices) HandleForProtocol(guid GUID) (handle uint64, err error) {
	handles, err := s.LocateHandleBuffer(guid)

	if err != nil {
		return
	}

	if handle = handles[0]; handle == 0 {
		return 0, errors.New("invalid handle")
	}

	return
}

// FreePool calls EFI_BOOT_SERVICES.FreePool().
func (s *BootServices) FreePool(addr uint64) (err error) {
	status := callService(s.base+freePool,
		[]uint64{
			addr,
		},
	)

	return parseStatus(status)
}
