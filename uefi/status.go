// Copyright (c) The chainboot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
)

// EFI_STATUS high bit, set on error codes
const errorBit = 1 << 63

// EFI_STATUS codes (Appendix D - Status Codes)
const (
	EFI_SUCCESS = iota
	EFI_LOAD_ERROR
	EFI_INVALID_PARAMETER
	EFI_UNSUPPORTED
	EFI_BAD_BUFFER_SIZE
	EFI_BUFFER_TOO_SMALL
	EFI_NOT_READY
	EFI_DEVICE_ERROR
	EFI_WRITE_PROTECTED
	EFI_OUT_OF_RESOURCES
	EFI_VOLUME_CORRUPTED
	EFI_VOLUME_FULL
	EFI_NO_MEDIA
	EFI_MEDIA_CHANGED
	EFI_NOT_FOUND
	EFI_ACCESS_DENIED
	EFI_NO_RESPONSE
	EFI_NO_MAPPING
	EFI_TIMEOUT
	EFI_NOT_STARTED
	EFI_ALREADY_STARTED
	EFI_ABORTED
	EFI_ICMP_ERROR
	EFI_TFTP_ERROR
	EFI_PROTOCOL_ERROR
	EFI_INCOMPATIBLE_VERSION
	EFI_SECURITY_VIOLATION
	EFI_CRC_ERROR
	EFI_END_OF_MEDIA
	_
	_
	EFI_END_OF_FILE
	EFI_INVALID_LANGUAGE
	EFI_COMPROMISED_DATA
	EFI_IP_ADDRESS_CONFLICT
	EFI_HTTP_ERROR
)

var statusNames = map[uint64]string{
	EFI_SUCCESS:              "EFI_SUCCESS",
	EFI_LOAD_ERROR:           "EFI_LOAD_ERROR",
	EFI_INVALID_PARAMETER:    "EFI_INVALID_PARAMETER",
	EFI_UNSUPPORTED:          "EFI_UNSUPPORTED",
	EFI_BAD_BUFFER_SIZE:      "EFI_BAD_BUFFER_SIZE",
	EFI_BUFFER_TOO_SMALL:     "EFI_BUFFER_TOO_SMALL",
	EFI_NOT_READY:            "EFI_NOT_READY",
	EFI_DEVICE_ERROR:         "EFI_DEVICE_ERROR",
	EFI_WRITE_PROTECTED:      "EFI_WRITE_PROTECTED",
	EFI_OUT_OF_RESOURCES:     "EFI_OUT_OF_RESOURCES",
	EFI_VOLUME_CORRUPTED:     "EFI_VOLUME_CORRUPTED",
	EFI_VOLUME_FULL:          "EFI_VOLUME_FULL",
	EFI_NO_MEDIA:             "EFI_NO_MEDIA",
	EFI_MEDIA_CHANGED:        "EFI_MEDIA_CHANGED",
	EFI_NOT_FOUND:            "EFI_NOT_FOUND",
	EFI_ACCESS_DENIED:        "EFI_ACCESS_DENIED",
	EFI_NO_RESPONSE:          "EFI_NO_RESPONSE",
	EFI_NO_MAPPING:           "EFI_NO_MAPPING",
	EFI_TIMEOUT:              "EFI_TIMEOUT",
	EFI_NOT_STARTED:          "EFI_NOT_STARTED",
	EFI_ALREADY_STARTED:      "EFI_ALREADY_STARTED",
	EFI_ABORTED:              "EFI_ABORTED",
	EFI_ICMP_ERROR:           "EFI_ICMP_ERROR",
	EFI_TFTP_ERROR:           "EFI_TFTP_ERROR",
	EFI_PROTOCOL_ERROR:       "EFI_PROTOCOL_ERROR",
	EFI_INCOMPATIBLE_VERSION: "EFI_INCOMPATIBLE_VERSION",
	EFI_SECURITY_VIOLATION:   "EFI_SECURITY_VIOLATION",
	EFI_CRC_ERROR:            "EFI_CRC_ERROR",
	EFI_END_OF_MEDIA:         "EFI_END_OF_MEDIA",
	EFI_END_OF_FILE:          "EFI_END_OF_FILE",
	EFI_INVALID_LANGUAGE:     "EFI_INVALID_LANGUAGE",
	EFI_COMPROMISED_DATA:     "EFI_COMPROMISED_DATA",
	EFI_IP_ADDRESS_CONFLICT:  "EFI_IP_ADDRESS_CONFLICT",
	EFI_HTTP_ERROR:           "EFI_HTTP_ERROR",
}

// Status represents an EFI_STATUS error code as returned by firmware
// services.
type Status uint64

// Error implements the error interface.
func (s Status) Error() string {
	code := uint64(s) &^ errorBit

	if name, ok := statusNames[code]; ok {
		return name
	}

	return fmt.Sprintf("EFI_STATUS error %#x (%d)", uint64(s), code)
}

// Code returns the status code without the error bit.
func (s Status) Code() uint64 {
	return uint64(s) &^ errorBit
}

// ErrorStatus returns the EFI_STATUS value for an error code.
func ErrorStatus(code uint64) uint64 {
	return code | errorBit
}

// parseStatus converts an EFI_STATUS into an error, warnings are ignored.
func parseStatus(status uint64) (err error) {
	if status&errorBit == 0 {
		return
	}

	return Status(status)
}
