// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
)

// EFI Runtime Services offset for ResetSystem
const resetSystem = 0x68

// EFI_RESET_SYSTEM
const (
	EfiResetCold = iota
	EfiResetWarm
	EfiResetShutdown
	EfiResetPlatformSpecific
)

// ResetSystem calls EFI_RUNTIME_SERVICES.ResetSystem(), the argument status
// is reported to the firmware as reset reason. On success it does not return.
func (s *RuntimeServices) ResetSystem(resetType int, status uint64) (err error) {
	if s.base == 0 {
		return errors.New("EFI Runtime Services unavailable")
	}

	if resetType < EfiResetCold || resetType > EfiResetPlatformSpecific {
		return Status(ErrorStatus(EFI_INVALID_PARAMETER))
	}

	callService(s.base+resetSystem,
		[]uint64{
			uint64(resetType),
			status,
			0,
			0,
		},
	)

	return errors.New("EFI_RUNTIME_SERVICES.ResetSystem() returned")
}
