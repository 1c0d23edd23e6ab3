// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package stub

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestImageFile(t *testing.T) {
	captureLog(t, "0")

	image := peImage(MetadataSection, []byte("ID=test\n"))
	fw := newFakeFirmware(image, nil)

	f, err := ImageFile(fw, testImageHandle)

	if err != nil {
		t.Fatal(err)
	}

	buf, err := ReadAll(f)

	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(image, buf); diff != "" {
		t.Errorf("image mismatch (-want +got):\n%s", diff)
	}

	// long form device path text
	if diff := cmp.Diff([][2]bool{{false, false}}, fw.text); diff != "" {
		t.Errorf("device path conversion mismatch (-want +got):\n%s", diff)
	}

	// only the returned file is left open
	if fw.resources != 1 {
		t.Errorf("%d firmware resources open, want 1", fw.resources)
	}

	if err = f.Close(); err != nil {
		t.Fatal(err)
	}

	checkResources(t, fw)
}

func TestImageFileInvalidHandle(t *testing.T) {
	fw := newFakeFirmware(nil, nil)

	if _, err := ImageFile(fw, testNextHandle); err == nil {
		t.Fatal("ImageFile() with invalid handle succeeded")
	}

	if len(fw.calls) != 1 {
		t.Errorf("unexpected firmware calls %v", fw.calls)
	}
}

func TestImageFileNoDevicePath(t *testing.T) {
	fw := newFakeFirmware(nil, nil)
	fw.devicePath = 0

	if _, err := ImageFile(fw, testImageHandle); !errors.Is(err, ErrNoDevicePath) {
		t.Fatalf("ImageFile() = %v, want %v", err, ErrNoDevicePath)
	}

	if len(fw.text) != 0 {
		t.Error("device path converted")
	}

	checkResources(t, fw)
}
