// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package stub

import (
	"bytes"
	"encoding/binary"
	"errors"
	"flag"
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"k8s.io/klog/v2"
)

const (
	testImageHandle = 0xd0d0
	testNextHandle  = 0xbeef
	testDevicePath  = 0x7f000
	testImagePath   = `\EFI\Linux\chainboot.efi`
)

var errEmptyImage = errors.New("EFI_LOAD_ERROR")

// fakeFirmware implements Firmware over an in-memory volume.
type fakeFirmware struct {
	fsys fstest.MapFS

	devicePath uint64
	paths      map[uint64]string

	volumeErr      error
	loadedImageErr error
	textErr        error
	loadErr        error
	startErr       error

	// outstanding volumes, loaded images and files
	resources int

	calls    []string
	opened   []string
	text     [][2]bool
	loaded   [][]byte
	started  []uint64
	unloaded []uint64
}

func newFakeFirmware(image []byte, nextStage []byte) *fakeFirmware {
	fw := &fakeFirmware{
		fsys:       fstest.MapFS{},
		devicePath: testDevicePath,
		paths: map[uint64]string{
			testDevicePath: testImagePath,
		},
	}

	if image != nil {
		fw.fsys[testImagePath] = &fstest.MapFile{Data: image}
	}

	if nextStage != nil {
		fw.fsys[NextStage] = &fstest.MapFile{Data: nextStage}
	}

	return fw
}

func (fw *fakeFirmware) Volume(imageHandle uint64) (Volume, error) {
	fw.calls = append(fw.calls, "Volume")

	if fw.volumeErr != nil {
		return nil, fw.volumeErr
	}

	if imageHandle != testImageHandle {
		return nil, errors.New("invalid image handle")
	}

	fw.resources++

	return &fakeVolume{fw: fw}, nil
}

func (fw *fakeFirmware) LoadedImage(imageHandle uint64) (LoadedImage, error) {
	fw.calls = append(fw.calls, "LoadedImage")

	if fw.loadedImageErr != nil {
		return nil, fw.loadedImageErr
	}

	if imageHandle != testImageHandle {
		return nil, errors.New("invalid image handle")
	}

	fw.resources++

	return &fakeLoadedImage{fw: fw, devicePath: fw.devicePath}, nil
}

func (fw *fakeFirmware) DevicePathToText(devicePath uint64, displayOnly bool, allowShortcuts bool) (string, error) {
	fw.calls = append(fw.calls, "DevicePathToText")
	fw.text = append(fw.text, [2]bool{displayOnly, allowShortcuts})

	if fw.textErr != nil {
		return "", fw.textErr
	}

	path, ok := fw.paths[devicePath]

	if !ok {
		return "", errors.New("invalid device path")
	}

	return path, nil
}

func (fw *fakeFirmware) LoadImage(buf []byte) (uint64, error) {
	fw.calls = append(fw.calls, "LoadImage")
	fw.loaded = append(fw.loaded, buf)

	if fw.loadErr != nil {
		return 0, fw.loadErr
	}

	if len(buf) == 0 {
		return 0, errEmptyImage
	}

	return testNextHandle, nil
}

func (fw *fakeFirmware) StartImage(imageHandle uint64) error {
	fw.calls = append(fw.calls, "StartImage")
	fw.started = append(fw.started, imageHandle)

	return fw.startErr
}

func (fw *fakeFirmware) UnloadImage(imageHandle uint64) error {
	fw.calls = append(fw.calls, "UnloadImage")
	fw.unloaded = append(fw.unloaded, imageHandle)

	return nil
}

type fakeVolume struct {
	fw     *fakeFirmware
	closed bool
}

func (v *fakeVolume) Open(name string) (fs.File, error) {
	if v.closed {
		return nil, fs.ErrClosed
	}

	v.fw.opened = append(v.fw.opened, name)

	f, err := v.fw.fsys.Open(name)

	if err != nil {
		return nil, err
	}

	v.fw.resources++

	return &fakeFile{File: f, fw: v.fw}, nil
}

func (v *fakeVolume) Close() error {
	if v.closed {
		return fs.ErrClosed
	}

	v.closed = true
	v.fw.resources--

	return nil
}

type fakeFile struct {
	fs.File
	fw     *fakeFirmware
	closed bool
}

func (f *fakeFile) Close() error {
	if f.closed {
		return fs.ErrClosed
	}

	f.closed = true
	f.fw.resources--

	return f.File.Close()
}

type fakeLoadedImage struct {
	fw         *fakeFirmware
	devicePath uint64
	closed     bool
}

func (image *fakeLoadedImage) DevicePath() uint64 {
	return image.devicePath
}

func (image *fakeLoadedImage) Close() error {
	if image.closed {
		return fs.ErrClosed
	}

	image.closed = true
	image.fw.resources--

	return nil
}

type fakeConsole struct {
	bytes.Buffer
	clears   int
	clearErr error
}

func (c *fakeConsole) ClearScreen() error {
	c.clears++
	return c.clearErr
}

// captureLog redirects klog output to a buffer, without headers, at the
// argument verbosity.
func captureLog(t *testing.T, v string) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}
	flags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(flags)

	for name, val := range map[string]string{
		"logtostderr":     "false",
		"alsologtostderr": "false",
		"skip_headers":    "true",
		"v":               v,
	} {
		if err := flags.Set(name, val); err != nil {
			t.Fatal(err)
		}
	}

	klog.SetOutput(buf)

	t.Cleanup(func() {
		klog.SetOutput(io.Discard)
		flags.Set("v", "0")
	})

	return buf
}

// peImage returns a minimal PE image holding the argument section.
func peImage(name string, data []byte) []byte {
	const (
		lfanew   = 0x40
		tableOff = lfanew + 4 + 20
		dataOff  = 0x200
	)

	buf := make([]byte, dataOff, dataOff+len(data))

	copy(buf[0:], "MZ")
	binary.LittleEndian.PutUint32(buf[0x3c:], lfanew)
	copy(buf[lfanew:], "PE\x00\x00")
	binary.LittleEndian.PutUint16(buf[lfanew+4+2:], 1)

	h := buf[tableOff:]
	copy(h[0:8], name)
	binary.LittleEndian.PutUint32(h[8:], uint32(len(data)))
	binary.LittleEndian.PutUint32(h[16:], uint32(len(data)))
	binary.LittleEndian.PutUint32(h[20:], dataOff)

	return append(buf, data...)
}
