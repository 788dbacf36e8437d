// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"unsafe"

	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"
)

// DefaultApplicationInfo describes the UI application to the driver.
var DefaultApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 0, 0),
	ApplicationVersion: vk.MakeVersion(1, 0, 0),
	PApplicationName:   safeString("KoruGUI"),
	PEngineName:        safeString("Koru3D"),
}

// InstanceConfiguration lists what the instance is created with.
type InstanceConfiguration struct {
	DebugMode  bool
	Extensions []string
	Layers     []string
}

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	Invalid       bool
	Extensions    []string
	Layers        []string
	Memory        uint64
}

// NewInstance creates a Vulkan instance. procAddr is the window system's
// vkGetInstanceProcAddr, nil loads the default vulkan library.
func NewInstance(appInfo *vk.ApplicationInfo, procAddr unsafe.Pointer, cfg InstanceConfiguration) (*Instance, error) {
	if cfg.DebugMode {
		cfg.Layers = append(cfg.Layers, "VK_LAYER_LUNARG_standard_validation")
		cfg.Extensions = append(cfg.Extensions, "VK_EXT_debug_report")
	}

	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, fmt.Errorf("vk.InstanceProcAddr(): %s", err.Error())
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("vk.Init(): %s", err.Error())
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(cfg.Extensions)),
		PpEnabledExtensionNames: safeStrings(cfg.Extensions),
		EnabledLayerCount:       uint32(len(cfg.Layers)),
		PpEnabledLayerNames:     safeStrings(cfg.Layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, fmt.Errorf("vk.CreateInstance(): %s", err.Error())
	}
	vk.InitInstance(instance)

	physicalDevices, err := enumerateDevices(instance)
	if err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}

	log.WithFields(log.Fields{
		"devices":    len(physicalDevices),
		"extensions": cfg.Extensions,
		"layers":     cfg.Layers,
	}).Info("Vulkan instance created")

	return &Instance{
		configuration:    cfg,
		instance:         instance,
		availableDevices: physicalDevices,
	}, nil
}

// Instance describes a Vulkan API Instance
type Instance struct {
	configuration InstanceConfiguration

	availableDevices []vk.PhysicalDevice
	surface          vk.Surface
	instance         vk.Instance
}

func enumerateDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)); err != nil {
		return nil, fmt.Errorf("vk.EnumeratePhysicalDevices(): %s", err.Error())
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, availableDevices)); err != nil {
		return nil, fmt.Errorf("vk.EnumeratePhysicalDevices(): %s", err.Error())
	}
	return availableDevices, nil
}

// PhysicalDevicesInfo returns a description of every physical device.
func (v *Instance) PhysicalDevicesInfo() []PhysicalDeviceInfo {
	pdi := make([]PhysicalDeviceInfo, len(v.availableDevices))
	for i, dev := range v.availableDevices {
		pdi[i] = describeDevice(dev)
	}
	return pdi
}

func describeDevice(dev vk.PhysicalDevice) PhysicalDeviceInfo {
	var info PhysicalDeviceInfo

	var numDeviceExtensions uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(dev, "", &numDeviceExtensions, nil)); err != nil {
		info.Invalid = true
	}
	deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(dev, "", &numDeviceExtensions, deviceExt)); err != nil {
		info.Invalid = true
	}
	for _, ext := range deviceExt {
		ext.Deref()
		info.Extensions = append(info.Extensions, vk.ToString(ext.ExtensionName[:]))
	}

	var numDeviceLayers uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(dev, &numDeviceLayers, nil)); err != nil {
		info.Invalid = true
	}
	deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(dev, &numDeviceLayers, deviceLayers)); err != nil {
		info.Invalid = true
	}
	for _, layer := range deviceLayers {
		layer.Deref()
		info.Layers = append(info.Layers, vk.ToString(layer.LayerName[:]))
	}

	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(dev, &memoryProperties)
	memoryProperties.Deref()
	for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		info.Memory += uint64(memoryProperties.MemoryHeaps[iMem].Size)
	}

	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(dev, &properties)
	properties.Deref()
	info.ID = int(properties.DeviceID)
	info.VendorID = int(properties.VendorID)
	info.Name = vk.ToString(properties.DeviceName[:])
	info.DriverVersion = int(properties.DriverVersion)
	return info
}

// SetSurface sets the window surface for rendering
func (v *Instance) SetSurface(pSurface unsafe.Pointer) {
	v.surface = vk.SurfaceFromPointer(uintptr(pSurface))
}

// Surface returns the window surface, or a null surface when none is set.
func (v *Instance) Surface() vk.Surface {
	if v.surface == nil {
		return vk.NullSurface
	}
	return v.surface
}

// Inner returns internal vk.Instance
func (v *Instance) Inner() interface{} {
	return v.instance
}

// Extensions returns the enabled instance extensions
func (v *Instance) Extensions() []string {
	return v.configuration.Extensions
}

// AvailableDevices returns handles of the physical devices.
func (v *Instance) AvailableDevices() []vk.PhysicalDevice {
	return v.availableDevices
}

// Destroy destroys the surface, if any, and the instance.
func (v *Instance) Destroy() {
	if v.surface != nil {
		vk.DestroySurface(v.instance, v.surface, nil)
		v.surface = nil
	}
	v.availableDevices = nil
	vk.DestroyInstance(v.instance, nil)
}
