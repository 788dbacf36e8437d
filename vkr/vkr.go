// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vkr implements the vulkan renderer the UI bridge draws through.
// A Device owns the logical device and the GPU images, a Presenter owns
// the swapchain and records UI draws into it.
package vkr

import (
	"errors"
	"fmt"
	"unsafe"
)

// package errors
var (
	ErrNoDevice        = errors.New("vkr: no physical device available")
	ErrNoQueueFamily   = errors.New("vkr: no queue family supports graphics and present")
	ErrNoMemoryType    = errors.New("vkr: suitable memory type not found")
	ErrForeignImage    = errors.New("vkr: image was not created by this device")
	ErrSwapchainStale  = errors.New("vkr: swapchain is out of date")
	ErrRecorderClosed  = errors.New("vkr: recorder already finished")
	ErrFrameNotStarted = errors.New("vkr: no swapchain image acquired")
)

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}

// SliceUint32 reslices bytes into a uint32, that is used
// to sumbit vulkan shaders for processing
func SliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&data)).Data))[:len(data)/4]
}

// mappedBytes views n bytes of mapped device memory as a byte slice.
func mappedBytes(ptr unsafe.Pointer, n int) []byte {
	return *(*[]byte)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(ptr),
		Len:  n,
		Cap:  n,
	}))
}

func safeString(s string) string {
	return fmt.Sprintf("%s\x00", s)
}

func safeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, fmt.Sprintf("%s\x00", s))
	}
	return safe
}
