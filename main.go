// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"k8s.io/klog/v2"

	"github.com/usbarmory/chainboot/stub"
	"github.com/usbarmory/chainboot/uefi/x64"
)

// set at build time with -ldflags -X
var (
	Build     string
	Revision  string
	Verbosity = "0"
)

var banner string

func init() {
	log.SetFlags(0)

	banner = fmt.Sprintf("chainboot • %s/%s (%s) • UEFI",
		runtime.GOOS, runtime.GOARCH, runtime.Version())

	if len(Revision) > 0 {
		banner += fmt.Sprintf(" • %s %s", Revision, Build)
	}
}

func initLogging(w io.Writer) {
	flags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(flags)

	flags.Set("logtostderr", "false")
	flags.Set("alsologtostderr", "false")
	flags.Set("skip_headers", "true")
	flags.Set("stderrthreshold", "FATAL")

	if err := flags.Set("v", Verbosity); err != nil {
		log.Printf("invalid verbosity %q, %v", Verbosity, err)
	}

	klog.SetOutput(w)
	log.SetOutput(w)
}

func main() {
	var w io.Writer = os.Stdout

	if logFile, err := os.OpenFile("/runtime.log", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600); err == nil {
		w = io.MultiWriter(os.Stdout, logFile)
	}

	initLogging(w)

	if x64.UEFI.Boot == nil {
		klog.Error("EFI Boot Services unavailable")
		x64.Exit(1)
	}

	s := &stub.Stub{
		Firmware:    &firmware{BootServices: x64.UEFI.Boot},
		Console:     x64.UEFI.Console,
		ImageHandle: x64.UEFI.ImageHandle(),
		Banner:      banner,
	}

	if err := s.Boot(); err != nil {
		klog.Errorf("boot failed, %v", err)
		klog.Flush()
		x64.Exit(1)
	}

	x64.Exit(0)
}
