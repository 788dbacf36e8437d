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
)

const imageFormat = vk.FormatR8g8b8a8Unorm

// Image is a sampled RGBA image with its own descriptor set.
type Image struct {
	device   *Device
	size     image.Point
	image    vk.Image
	memory   Memory
	view     vk.ImageView
	set      vk.DescriptorSet
	layout   vk.ImageLayout
	released bool
}

func newImage(d *Device, size image.Point) (*Image, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("vkr: image size %v must be positive", size)
	}

	ici := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  uint32(size.X),
			Height: uint32(size.Y),
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        imageFormat,
		Tiling:        vk.ImageTilingOptimal,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit),
		SharingMode:   vk.SharingModeExclusive,
		Samples:       vk.SampleCount1Bit,
	}

	img := &Image{
		device: d,
		size:   size,
		layout: vk.ImageLayoutUndefined,
	}
	if err := vk.Error(vk.CreateImage(d.device, &ici, nil, &img.image)); err != nil {
		return nil, fmt.Errorf("vk.CreateImage(): %s", err.Error())
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.device, img.image, &req)
	req.Deref()

	memory, err := d.allocator.Malloc(req, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		vk.DestroyImage(d.device, img.image, nil)
		return nil, err
	}
	img.memory = memory

	if err := vk.Error(vk.BindImageMemory(d.device, img.image, memory.Get(), 0)); err != nil {
		img.destroy()
		return nil, fmt.Errorf("vk.BindImageMemory(): %s", err.Error())
	}

	if err := img.createView(); err != nil {
		img.destroy()
		return nil, err
	}
	if err := img.createDescriptorSet(); err != nil {
		img.destroy()
		return nil, err
	}
	return img, nil
}

func (i *Image) createView() error {
	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    i.image,
		ViewType: vk.ImageViewType2d,
		Format:   imageFormat,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(i.device.device, &ivci, nil, &view)); err != nil {
		return fmt.Errorf("vk.CreateImageView(): %s", err.Error())
	}
	i.view = view
	return nil
}

func (i *Image) createDescriptorSet() error {
	dsai := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     i.device.descriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{i.device.setLayout},
	}

	var set vk.DescriptorSet
	if err := vk.Error(vk.AllocateDescriptorSets(i.device.device, &dsai, &set)); err != nil {
		return fmt.Errorf("vk.AllocateDescriptorSets(): %s", err.Error())
	}
	i.set = set

	dii := vk.DescriptorImageInfo{
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		ImageView:   i.view,
		Sampler:     i.device.sampler,
	}
	wds := []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		PImageInfo:      []vk.DescriptorImageInfo{dii},
	}}
	vk.UpdateDescriptorSets(i.device.device, uint32(len(wds)), wds, 0, nil)
	return nil
}

// Size implements gfx.Image.
func (i *Image) Size() image.Point {
	return i.size
}

// Upload implements gfx.Image. The pixels are staged in a host visible
// buffer and copied on the device queue, the call returns once the copy
// completed.
func (i *Image) Upload(pos image.Point, pixels *image.RGBA) error {
	if i.released {
		return fmt.Errorf("vkr: upload to a released image")
	}
	size := pixels.Rect.Size()
	region := image.Rectangle{Min: pos, Max: pos.Add(size)}
	if size.X <= 0 || size.Y <= 0 || !region.In(image.Rectangle{Max: i.size}) {
		return fmt.Errorf("vkr: upload region %v outside image %v", region, i.size)
	}

	rowBytes := size.X * 4
	staging, err := NewBuffer(i.device.device, uint(rowBytes*size.Y), vk.BufferUsageTransferSrcBit, i.device.allocator)
	if err != nil {
		return err
	}
	defer staging.Release()

	for y := 0; y < size.Y; y++ {
		start := pixels.PixOffset(pixels.Rect.Min.X, pixels.Rect.Min.Y+y)
		if _, err := staging.Append(pixels.Pix[start : start+rowBytes]); err != nil {
			return err
		}
	}

	cmd, err := i.device.beginSingleTimeCommands()
	if err != nil {
		return err
	}

	transitionLayout(cmd, i.image, i.layout, vk.ImageLayoutTransferDstOptimal)
	bic := vk.BufferImageCopy{
		ImageOffset: vk.Offset3D{
			X: int32(pos.X),
			Y: int32(pos.Y),
		},
		ImageExtent: vk.Extent3D{
			Width:  uint32(size.X),
			Height: uint32(size.Y),
			Depth:  1,
		},
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
	}
	vk.CmdCopyBufferToImage(cmd, staging.Get(), i.image, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{bic})
	transitionLayout(cmd, i.image, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)

	if err := i.device.endSingleTimeCommands(cmd); err != nil {
		return err
	}
	i.layout = vk.ImageLayoutShaderReadOnlyOptimal
	return nil
}

// transitionLayout records a layout barrier. Images leave the shader read
// layout only after fragment shaders of earlier submissions are done.
func transitionLayout(cmd vk.CommandBuffer, img vk.Image, old, new vk.ImageLayout) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           old,
		NewLayout:           new,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var srcStage, dstStage vk.PipelineStageFlags
	switch {
	case new == vk.ImageLayoutTransferDstOptimal && old == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case new == vk.ImageLayoutTransferDstOptimal:
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	default:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	}

	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// Release implements gfx.Image. The image must no longer be used by
// submitted command buffers.
func (i *Image) Release() {
	if i.released {
		return
	}
	i.destroy()
	i.device.liveImages--
	log.WithFields(log.Fields{
		"size": i.size,
		"live": i.device.liveImages,
	}).Debug("Image released")
}

func (i *Image) destroy() {
	dev := i.device.device
	if i.set != nil {
		vk.FreeDescriptorSets(dev, i.device.descriptorPool, 1, &i.set)
	}
	if i.view != nil {
		vk.DestroyImageView(dev, i.view, nil)
	}
	vk.DestroyImage(dev, i.image, nil)
	if i.memory.Get() != nil {
		i.memory.Release()
	}
	i.released = true
}
