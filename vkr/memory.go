// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"unsafe"

	vk "github.com/devblok/vulkan"
)

// Memory defines a usable memory region.
type Memory struct {
	mapped unsafe.Pointer
	len    uint
	device vk.Device
	memory vk.DeviceMemory
}

// Len returns the length of assigned memory.
func (m *Memory) Len() uint {
	return m.len
}

// Get returns the vulkan memory handle.
func (m *Memory) Get() vk.DeviceMemory {
	return m.memory
}

// Map maps the entire memory region and returns a pointer to it.
// Mapping an already mapped region returns the existing pointer.
func (m *Memory) Map() (unsafe.Pointer, error) {
	if m.mapped != nil {
		return m.mapped, nil
	}
	var memMapped unsafe.Pointer
	if err := vk.Error(vk.MapMemory(m.device, m.memory, 0, vk.DeviceSize(m.len), 0, &memMapped)); err != nil {
		return nil, fmt.Errorf("vk.MapMemory(): %s", err.Error())
	}
	m.mapped = memMapped
	return memMapped, nil
}

// Unmap removes the memory mapping if it was mapped.
func (m *Memory) Unmap() {
	if m.mapped != nil {
		vk.UnmapMemory(m.device, m.memory)
		m.mapped = nil
	}
}

// Release frees memory after unmapping it if previously mapped.
func (m *Memory) Release() {
	m.Unmap()
	vk.FreeMemory(m.device, m.memory, nil)
}

// NewMemoryAllocator creates a new memory allocator. Allocates for the logical device,
// reads memory properties of the physical device to influence allocation.
func NewMemoryAllocator(device vk.Device, phyDevice vk.PhysicalDevice) *MemoryAllocator {
	var memProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(phyDevice, &memProperties)
	memProperties.Deref()
	for idx := uint32(0); idx < memProperties.MemoryTypeCount; idx++ {
		memProperties.MemoryTypes[idx].Deref()
	}

	return &MemoryAllocator{
		device:        device,
		memProperties: memProperties,
	}
}

// MemoryAllocator is responsible returning usable
// memory for any resources that may need it.
type MemoryAllocator struct {
	device        vk.Device
	memProperties vk.PhysicalDeviceMemoryProperties
}

// Malloc returns a usable memory chunk ready for use.
func (ma *MemoryAllocator) Malloc(req vk.MemoryRequirements, prop vk.MemoryPropertyFlagBits) (Memory, error) {
	memTypeIdx, err := ma.findMemoryType(req.MemoryTypeBits, vk.MemoryPropertyFlags(prop))
	if err != nil {
		return Memory{}, err
	}

	mai := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memTypeIdx,
	}

	var memory vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(ma.device, &mai, nil, &memory)); err != nil {
		return Memory{}, fmt.Errorf("vk.AllocateMemory(): %s", err.Error())
	}

	return Memory{
		len:    uint(req.Size),
		device: ma.device,
		memory: memory,
	}, nil
}

func (ma *MemoryAllocator) findMemoryType(filter uint32, prop vk.MemoryPropertyFlags) (uint32, error) {
	for idx := uint32(0); idx < ma.memProperties.MemoryTypeCount; idx++ {
		if filter&(1<<idx) != 0 && (ma.memProperties.MemoryTypes[idx].PropertyFlags&prop) == prop {
			return idx, nil
		}
	}
	return 0, fmt.Errorf("%w: filter %#x, properties %#x", ErrNoMemoryType, filter, prop)
}

// NewBuffer creates, configures, allocates and binds a new host visible buffer.
func NewBuffer(dev vk.Device, size uint, usage vk.BufferUsageFlagBits, ma *MemoryAllocator) (*Buffer, error) {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if err := vk.Error(vk.CreateBuffer(dev, &createInfo, nil, &buffer)); err != nil {
		return nil, fmt.Errorf("vk.CreateBuffer(): %s", err.Error())
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev, buffer, &req)
	req.Deref()

	memory, err := ma.Malloc(req, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		vk.DestroyBuffer(dev, buffer, nil)
		return nil, err
	}

	if err := vk.Error(vk.BindBufferMemory(dev, buffer, memory.Get(), 0)); err != nil {
		vk.DestroyBuffer(dev, buffer, nil)
		memory.Release()
		return nil, fmt.Errorf("vk.BindBufferMemory(): %s", err.Error())
	}

	return &Buffer{
		device: dev,
		buffer: buffer,
		size:   size,
		memory: memory,
	}, nil
}

// Buffer implements a generic vulkan buffer.
type Buffer struct {
	device vk.Device
	buffer vk.Buffer
	size   uint
	used   uint

	memory Memory
}

// Get returns the vulkan Buffer handle.
func (b *Buffer) Get() vk.Buffer {
	return b.buffer
}

// Size returns the usable size of the buffer in bytes.
func (b *Buffer) Size() uint {
	return b.size
}

// Fits reports whether n more bytes can be appended.
func (b *Buffer) Fits(n uint) bool {
	return b.used+n <= b.size
}

// Append copies data after what was appended before and returns the
// offset it was written at.
func (b *Buffer) Append(data []byte) (uint, error) {
	if !b.Fits(uint(len(data))) {
		return 0, fmt.Errorf("vkr: buffer append of %d bytes overflows %d/%d", len(data), b.used, b.size)
	}
	ptr, err := b.memory.Map()
	if err != nil {
		return 0, err
	}
	offset := b.used
	copy(mappedBytes(ptr, int(b.size))[offset:], data)
	// offsets of following appends stay 4 byte aligned
	b.used = (offset + uint(len(data)) + 3) &^ 3
	return offset, nil
}

// Reset forgets appended data, it is overwritten by following appends.
func (b *Buffer) Reset() {
	b.used = 0
}

// Release destroys the buffer and memory asociated with it.
func (b *Buffer) Release() {
	vk.DestroyBuffer(b.device, b.buffer, nil)
	b.memory.Release()
}
