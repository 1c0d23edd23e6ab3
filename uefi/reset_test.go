// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"testing"
)

func TestResetSystemInvalid(t *testing.T) {
	if err := (&RuntimeServices{}).ResetSystem(EfiResetCold, EFI_SUCCESS); err == nil {
		t.Error("ResetSystem() without runtime services succeeded")
	}

	rs := &RuntimeServices{base: 0x1000}
	err := rs.ResetSystem(EfiResetPlatformSpecific+1, EFI_SUCCESS)

	if !errors.Is(err, Status(ErrorStatus(EFI_INVALID_PARAMETER))) {
		t.Errorf("ResetSystem() = %v, want EFI_INVALID_PARAMETER", err)
	}
}
