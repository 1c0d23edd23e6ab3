// Copyright (c) WithSecure Corporation
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package x64

import (
	_ "unsafe"

	"github.com/usbarmory/chainboot/uefi"
)

// Console represents the early UEFI services console for pre UEFI.Init()
// standard output.
var Console = &uefi.Console{
	ForceLine: true,
}

//go:linkname printk runtime/goos.Printk
func printk(c byte) {
	UART0.Tx(c)

	if Console.Out == 0 {
		Console.Out = conOut
	}

	Console.Output([]byte{c, 0x00})

	if c == 0x0a && Console.ForceLine { // LF
		Console.Output([]byte{0x0d, 0x00}) // CR
	}
}
