// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package stub implements an EFI boot stub which logs the metadata embedded
// in its own image and chainloads the next stage image from its boot volume.
package stub

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"k8s.io/klog/v2"

	"github.com/usbarmory/chainboot/pe"
)

const (
	// MetadataSection is the image section holding os-release metadata.
	MetadataSection = ".osrel"

	// NextStage is the next stage image path, relative to the volume
	// root of the running image.
	NextStage = "linux.efi"

	// placeholder for undecodable metadata
	invalidMetadata = "???"
)

// ErrImageReturned is returned when the next stage image returns control to
// the stub.
var ErrImageReturned = errors.New("next stage image returned")

// Stub represents a boot stub instance.
type Stub struct {
	// Firmware represents the platform boot services.
	Firmware Firmware

	// Console represents the firmware text console.
	Console Console

	// ImageHandle is the running image handle.
	ImageHandle uint64

	// Banner is printed on the cleared console.
	Banner string

	started time.Time
}

// Boot prints the banner, logs the running image metadata and starts the next
// stage image. The first failure aborts the sequence, on success it does not
// return.
func (s *Stub) Boot() (err error) {
	s.started = time.Now()

	if s.Firmware == nil {
		return errors.New("missing firmware services")
	}

	if err = s.banner(); err != nil {
		return fmt.Errorf("could not print banner, %w", err)
	}

	if err = s.inspect(); err != nil {
		return fmt.Errorf("could not inspect image, %w", err)
	}

	if err = s.chainload(); err != nil {
		return fmt.Errorf("could not chainload %s, %w", NextStage, err)
	}

	return
}

func (s *Stub) banner() (err error) {
	if s.Console == nil {
		return
	}

	if err = s.Console.ClearScreen(); err != nil {
		return
	}

	_, err = fmt.Fprintf(s.Console, "%s\n\n", s.Banner)

	return
}

// inspect logs the metadata section of the running image.
func (s *Stub) inspect() (err error) {
	f, err := ImageFile(s.Firmware, s.ImageHandle)

	if err != nil {
		return
	}

	defer f.Close()

	buf, err := ReadAll(f)

	if err != nil {
		return
	}

	if klog.V(2).Enabled() {
		klog.Infof("image sections %s", strings.Join(pe.Names(buf), " "))
	}

	if data, ok := pe.Section(buf, MetadataSection); ok {
		klog.Infof("osrel = %s", metadata(data))
	}

	return
}

// metadata decodes section contents as UTF-8 text.
func metadata(data []byte) string {
	if !utf8.Valid(data) {
		return invalidMetadata
	}

	return strings.TrimRight(string(data), "\x00\r\n")
}

// chainload loads and starts the next stage image.
func (s *Stub) chainload() (err error) {
	root, err := s.Firmware.Volume(s.ImageHandle)

	if err != nil {
		return
	}

	defer root.Close()

	buf, err := readFile(root, NextStage)

	if err != nil {
		s.listVolume(root)
		return
	}

	klog.V(1).Infof("read %s (%s)", NextStage, humanize.IBytes(uint64(len(buf))))

	imageHandle, err := s.Firmware.LoadImage(buf)

	if err != nil {
		return fmt.Errorf("could not load image, %w", err)
	}

	klog.Infof("starting %s after %s", NextStage, durafmt.Parse(time.Since(s.started)).LimitFirstN(2))

	if err = s.Firmware.StartImage(imageHandle); err != nil {
		if err := s.Firmware.UnloadImage(imageHandle); err != nil {
			klog.Warningf("could not unload image, %v", err)
		}

		return fmt.Errorf("could not start image, %w", err)
	}

	return ErrImageReturned
}

// listVolume logs the volume root directory entries.
func (s *Stub) listVolume(root fs.FS) {
	if !klog.V(1).Enabled() {
		return
	}

	entries, err := fs.ReadDir(root, `\`)

	if err != nil {
		return
	}

	var names []string

	for _, e := range entries {
		names = append(names, e.Name())
	}

	klog.Infof("volume root: %s", strings.Join(names, " "))
}
