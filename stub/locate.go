// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package stub

import (
	"errors"
	"fmt"
	"io/fs"

	"k8s.io/klog/v2"
)

// ErrNoDevicePath is returned when the running image has no file device path
// (e.g. it was loaded from a memory buffer).
var ErrNoDevicePath = errors.New("image device path not found")

// ImageFile opens, read-only, the file backing the argument image on its boot
// volume.
func ImageFile(fw Firmware, imageHandle uint64) (f fs.File, err error) {
	root, err := fw.Volume(imageHandle)

	if err != nil {
		return nil, fmt.Errorf("could not open image volume, %w", err)
	}

	defer root.Close()

	image, err := fw.LoadedImage(imageHandle)

	if err != nil {
		return nil, fmt.Errorf("could not open loaded image, %w", err)
	}

	defer image.Close()

	devicePath := image.DevicePath()

	if devicePath == 0 {
		return nil, ErrNoDevicePath
	}

	// long form, as shortcuts are not valid file names
	path, err := fw.DevicePathToText(devicePath, false, false)

	if err != nil {
		return nil, fmt.Errorf("could not convert image device path, %w", err)
	}

	klog.V(1).Infof("image path %s", path)

	if f, err = root.Open(path); err != nil {
		return nil, fmt.Errorf("could not open image file, %w", err)
	}

	return
}
