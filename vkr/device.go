// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"image"

	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/korugui/core"
	"github.com/devblok/korugui/gfx"
)

// maxImages bounds the descriptor sets, one is held per live image.
const maxImages = 1024

// NewDevice creates the logical device on the first physical device with
// a queue family that can draw and present to the instance surface.
func NewDevice(instance *Instance, cfg core.RendererConfiguration) (*Device, error) {
	physical, family, err := pickDevice(instance)
	if err != nil {
		return nil, err
	}

	extensions := cfg.DeviceExtensions
	if len(extensions) == 0 {
		extensions = []string{vk.KhrSwapchainExtensionName}
	}

	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: family,
		QueueCount:       1,
		PQueuePriorities: []float32{1},
	}}
	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}

	var logical vk.Device
	if err := vk.Error(vk.CreateDevice(physical, &dci, nil, &logical)); err != nil {
		return nil, fmt.Errorf("vk.CreateDevice(): %s", err.Error())
	}

	var queue vk.Queue
	vk.GetDeviceQueue(logical, family, 0, &queue)

	d := &Device{
		surface:     instance.Surface(),
		physical:    physical,
		device:      logical,
		queue:       queue,
		queueFamily: family,
		allocator:   NewMemoryAllocator(logical, physical),
	}

	for _, step := range []func() error{
		d.createCommandPool,
		d.createSampler,
		d.createDescriptorSetLayout,
		d.createDescriptorPool,
	} {
		if err := step(); err != nil {
			d.Destroy()
			return nil, err
		}
	}

	info := describeDevice(physical)
	log.WithFields(log.Fields{
		"device":      info.Name,
		"vendor":      info.VendorID,
		"queueFamily": family,
	}).Info("Vulkan device created")
	return d, nil
}

func pickDevice(instance *Instance) (vk.PhysicalDevice, uint32, error) {
	surface := instance.Surface()
	for _, dev := range instance.AvailableDevices() {
		var count uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(dev, &count, nil)
		families := make([]vk.QueueFamilyProperties, count)
		vk.GetPhysicalDeviceQueueFamilyProperties(dev, &count, families)

		for i := uint32(0); i < count; i++ {
			families[i].Deref()
			if families[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) == 0 {
				continue
			}
			if surface != nil {
				var supportsPresent vk.Bool32
				vk.GetPhysicalDeviceSurfaceSupport(dev, i, surface, &supportsPresent)
				if !supportsPresent.B() {
					continue
				}
			}
			return dev, i, nil
		}
	}
	if len(instance.AvailableDevices()) == 0 {
		return nil, 0, ErrNoDevice
	}
	return nil, 0, ErrNoQueueFamily
}

// Device owns the logical device and the images sampled by UI draws.
type Device struct {
	surface     vk.Surface
	physical    vk.PhysicalDevice
	device      vk.Device
	queue       vk.Queue
	queueFamily uint32
	allocator   *MemoryAllocator

	commandPool    vk.CommandPool
	sampler        vk.Sampler
	setLayout      vk.DescriptorSetLayout
	descriptorPool vk.DescriptorPool

	liveImages int
}

func (d *Device) createCommandPool() error {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}

	var commandPool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(d.device, &cpci, nil, &commandPool)); err != nil {
		return fmt.Errorf("vk.CreateCommandPool(): %s", err.Error())
	}
	d.commandPool = commandPool
	return nil
}

func (d *Device) createSampler() error {
	sci := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeClampToEdge,
		AddressModeV:            vk.SamplerAddressModeClampToEdge,
		AddressModeW:            vk.SamplerAddressModeClampToEdge,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		BorderColor:             vk.BorderColorFloatTransparentBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}

	var sampler vk.Sampler
	if err := vk.Error(vk.CreateSampler(d.device, &sci, nil, &sampler)); err != nil {
		return fmt.Errorf("vk.CreateSampler(): %s", err.Error())
	}
	d.sampler = sampler
	return nil
}

func (d *Device) createDescriptorSetLayout() error {
	bindings := []vk.DescriptorSetLayoutBinding{{
		Binding:         0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	}}
	dslci := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	if err := vk.Error(vk.CreateDescriptorSetLayout(d.device, &dslci, nil, &layout)); err != nil {
		return fmt.Errorf("vk.CreateDescriptorSetLayout(): %s", err.Error())
	}
	d.setLayout = layout
	return nil
}

func (d *Device) createDescriptorPool() error {
	poolSizes := []vk.DescriptorPoolSize{{
		Type:            vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: maxImages,
	}}
	dpci := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       maxImages,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}

	var pool vk.DescriptorPool
	if err := vk.Error(vk.CreateDescriptorPool(d.device, &dpci, nil, &pool)); err != nil {
		return fmt.Errorf("vk.CreateDescriptorPool(): %s", err.Error())
	}
	d.descriptorPool = pool
	return nil
}

// NewImage implements gfx.Device.
func (d *Device) NewImage(size image.Point) (gfx.Image, error) {
	img, err := newImage(d, size)
	if err != nil {
		return nil, err
	}
	d.liveImages++
	log.WithFields(log.Fields{
		"size": size,
		"live": d.liveImages,
	}).Debug("Image created")
	return img, nil
}

func (d *Device) beginSingleTimeCommands() (vk.CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelPrimary,
		CommandPool:        d.commandPool,
		CommandBufferCount: 1,
	}

	commandBuffers := make([]vk.CommandBuffer, 1)
	if err := vk.Error(vk.AllocateCommandBuffers(d.device, &cbai, commandBuffers)); err != nil {
		return nil, fmt.Errorf("vk.AllocateCommandBuffers(): %s", err.Error())
	}
	commandBuffer := commandBuffers[0]

	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(commandBuffer, &cbbi)); err != nil {
		vk.FreeCommandBuffers(d.device, d.commandPool, 1, commandBuffers)
		return nil, fmt.Errorf("vk.BeginCommandBuffer(): %s", err.Error())
	}
	return commandBuffer, nil
}

// endSingleTimeCommands submits the commands and waits for the queue.
func (d *Device) endSingleTimeCommands(commandBuffer vk.CommandBuffer) error {
	defer vk.FreeCommandBuffers(d.device, d.commandPool, 1, []vk.CommandBuffer{commandBuffer})

	if err := vk.Error(vk.EndCommandBuffer(commandBuffer)); err != nil {
		return fmt.Errorf("vk.EndCommandBuffer(): %s", err.Error())
	}

	si := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer},
	}
	if err := vk.Error(vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{si}, nil)); err != nil {
		return fmt.Errorf("vk.QueueSubmit(): %s", err.Error())
	}
	if err := vk.Error(vk.QueueWaitIdle(d.queue)); err != nil {
		return fmt.Errorf("vk.QueueWaitIdle(): %s", err.Error())
	}
	return nil
}

// WaitIdle blocks until the device finished all submitted work.
func (d *Device) WaitIdle() error {
	if err := vk.Error(vk.DeviceWaitIdle(d.device)); err != nil {
		return fmt.Errorf("vk.DeviceWaitIdle(): %s", err.Error())
	}
	return nil
}

// Destroy destroys the device. Images must be released before.
func (d *Device) Destroy() {
	if d.liveImages > 0 {
		log.WithField("live", d.liveImages).Warn("Device destroyed with live images")
	}
	vk.DeviceWaitIdle(d.device)
	if d.descriptorPool != nil {
		vk.DestroyDescriptorPool(d.device, d.descriptorPool, nil)
	}
	if d.setLayout != nil {
		vk.DestroyDescriptorSetLayout(d.device, d.setLayout, nil)
	}
	if d.sampler != nil {
		vk.DestroySampler(d.device, d.sampler, nil)
	}
	if d.commandPool != nil {
		vk.DestroyCommandPool(d.device, d.commandPool, nil)
	}
	vk.DestroyDevice(d.device, nil)
}
