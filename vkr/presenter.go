// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"fmt"
	"image"
	"math"
	"unsafe"

	vk "github.com/devblok/vulkan"
	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/korugui/core"
	"github.com/devblok/korugui/gfx"
)

// Initial per frame mesh buffer sizes, they grow on demand.
const (
	initialVertexBytes = 64 << 10
	initialIndexBytes  = 32 << 10
)

// NewPresenter creates the swapchain for the device surface and the UI
// pipeline drawing into it. Shaders are looked up in src by their
// VertexShaderFile and FragmentShaderFile names.
func NewPresenter(dev *Device, cfg core.RendererConfiguration, src ShaderSource) (*Presenter, error) {
	if dev.surface == nil {
		return nil, fmt.Errorf("vkr: NewPresenter needs a device created with a surface")
	}
	p := &Presenter{
		Device:        dev,
		configuration: cfg,
		extent: vk.Extent2D{
			Width:  cfg.ScreenWidth,
			Height: cfg.ScreenHeight,
		},
		ClearColor: [4]float32{0.005, 0.005, 0.005, 1},
	}

	if err := p.chooseSurfaceFormat(); err != nil {
		return nil, err
	}

	for _, step := range []func() error{
		func() error { return p.createSwapchain(nil) },
		p.createImageViews,
		p.createRenderPass,
		func() error { return p.loadShaders(src) },
		p.createPipelineLayout,
		p.createPipeline,
		p.createFramebuffers,
		p.createFrames,
	} {
		if err := step(); err != nil {
			p.Destroy()
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"width":  p.extent.Width,
		"height": p.extent.Height,
		"images": len(p.images),
		"format": p.format,
	}).Info("Swapchain created")
	return p, nil
}

// Presenter draws UI command buffers onto swapchain images. It embeds
// the Device, so it is the gfx.Device handed to the UI bridge.
//
// A frame is Acquire, then NewRecorder and Finish through the bridge,
// then Submit and Present.
type Presenter struct {
	*Device

	configuration core.RendererConfiguration

	// ClearColor fills the target before UI draws.
	ClearColor [4]float32

	format     vk.Format
	colorSpace vk.ColorSpace
	extent     vk.Extent2D

	swapchain    vk.Swapchain
	images       []vk.Image
	views        []vk.ImageView
	framebuffers []vk.Framebuffer

	renderPass     vk.RenderPass
	pipelineLayout vk.PipelineLayout
	pipeline       vk.Pipeline
	shaders        []*Shader

	frames     []*frameSlot
	current    int
	imageIndex uint32
	acquired   bool
	stale      bool
}

// frameSlot holds what one frame in flight records into.
type frameSlot struct {
	cmd            vk.CommandBuffer
	fence          vk.Fence
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore

	vertices *Buffer
	indices  *Buffer

	// retired buffers were replaced by bigger ones while recording, they
	// are released once the slot's fence signals.
	retired []*Buffer
}

func (p *Presenter) chooseSurfaceFormat() error {
	var count uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(p.physical, p.surface, &count, nil)); err != nil {
		return fmt.Errorf("vk.GetPhysicalDeviceSurfaceFormats(): %s", err.Error())
	}
	if count == 0 {
		return fmt.Errorf("vk.GetPhysicalDeviceSurfaceFormats(): no surface formats")
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(p.physical, p.surface, &count, formats)); err != nil {
		return fmt.Errorf("vk.GetPhysicalDeviceSurfaceFormats(): %s", err.Error())
	}

	formats[0].Deref()
	p.format = formats[0].Format
	p.colorSpace = formats[0].ColorSpace
	for _, f := range formats {
		f.Deref()
		// UI colors are blended in gamma space, so prefer a unorm target
		if f.Format == vk.FormatB8g8r8a8Unorm || f.Format == vk.FormatR8g8b8a8Unorm {
			p.format = f.Format
			p.colorSpace = f.ColorSpace
			break
		}
	}
	if p.format == vk.FormatUndefined {
		p.format = vk.FormatB8g8r8a8Unorm
	}
	return nil
}

func (p *Presenter) createSwapchain(oldSwapchain vk.Swapchain) error {
	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(p.physical, p.surface, &caps)); err != nil {
		return fmt.Errorf("vk.GetPhysicalDeviceSurfaceCapabilities(): %s", err.Error())
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	if caps.CurrentExtent.Width != math.MaxUint32 {
		p.extent = caps.CurrentExtent
	}
	if p.extent.Width == 0 || p.extent.Height == 0 {
		return ErrSwapchainStale
	}

	imageCount := p.configuration.SwapchainSize
	if imageCount < caps.MinImageCount {
		imageCount = caps.MinImageCount
	}
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	compositeAlpha := vk.CompositeAlphaOpaqueBit
	for _, flag := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(flag) != 0 {
			compositeAlpha = flag
			break
		}
	}

	scci := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          p.surface,
		MinImageCount:    imageCount,
		ImageFormat:      p.format,
		ImageColorSpace:  p.colorSpace,
		ImageExtent:      p.extent,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     vk.SurfaceTransformIdentityBit,
		CompositeAlpha:   compositeAlpha,
		PresentMode:      vk.PresentModeFifo,
		Clipped:          vk.True,
		ImageArrayLayers: 1,
		ImageSharingMode: vk.SharingModeExclusive,
		OldSwapchain:     oldSwapchain,
	}

	var swapchain vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(p.device, &scci, nil, &swapchain)); err != nil {
		return fmt.Errorf("vk.CreateSwapchain(): %s", err.Error())
	}
	p.swapchain = swapchain

	var numImages uint32
	if err := vk.Error(vk.GetSwapchainImages(p.device, p.swapchain, &numImages, nil)); err != nil {
		return fmt.Errorf("vk.GetSwapchainImages(num): %s", err.Error())
	}
	p.images = make([]vk.Image, numImages)
	if err := vk.Error(vk.GetSwapchainImages(p.device, p.swapchain, &numImages, p.images)); err != nil {
		return fmt.Errorf("vk.GetSwapchainImages(images): %s", err.Error())
	}
	return nil
}

func (p *Presenter) createImageViews() error {
	p.views = p.views[:0]
	for idx, img := range p.images {
		ivci := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   p.format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}

		var view vk.ImageView
		if err := vk.Error(vk.CreateImageView(p.device, &ivci, nil, &view)); err != nil {
			return fmt.Errorf("vk.CreateImageView()[%d]: %s", idx, err.Error())
		}
		p.views = append(p.views, view)
	}
	return nil
}

func (p *Presenter) createRenderPass() error {
	attachments := []vk.AttachmentDescription{{
		Format:         p.format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}

	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(p.device, &rpci, nil, &renderPass)); err != nil {
		return fmt.Errorf("vk.CreateRenderPass(): %s", err.Error())
	}
	p.renderPass = renderPass
	return nil
}

func (p *Presenter) loadShaders(src ShaderSource) error {
	for _, file := range []string{VertexShaderFile, FragmentShaderFile} {
		shader, err := NewShader(p.device, src, file)
		if err != nil {
			return err
		}
		p.shaders = append(p.shaders, shader)
	}
	return nil
}

func (p *Presenter) createPipelineLayout() error {
	pcr := []vk.PushConstantRange{{
		Offset:     0,
		Size:       uint32(unsafe.Sizeof(pushConstant{})),
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}}

	plci := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         1,
		PSetLayouts:            []vk.DescriptorSetLayout{p.setLayout},
		PushConstantRangeCount: uint32(len(pcr)),
		PPushConstantRanges:    pcr,
	}

	var pipelineLayout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(p.device, &plci, nil, &pipelineLayout)); err != nil {
		return fmt.Errorf("vk.CreatePipelineLayout(): %s", err.Error())
	}
	p.pipelineLayout = pipelineLayout
	return nil
}

func (p *Presenter) createPipeline() error {
	stages := make([]vk.PipelineShaderStageCreateInfo, len(p.shaders))
	for idx, shader := range p.shaders {
		stages[idx] = shader.stageInfo()
	}

	vertexAttributeDescriptions := VertexAttributeDescriptions()
	vertexBindingDescriptions := VertexBindingDescriptions()

	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexAttributeDescriptionCount: uint32(len(vertexAttributeDescriptions)),
			PVertexAttributeDescriptions:    vertexAttributeDescriptions,
			VertexBindingDescriptionCount:   uint32(len(vertexBindingDescriptions)),
			PVertexBindingDescriptions:      vertexBindingDescriptions,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeNone),
			FrontFace:   vk.FrontFaceCounterClockwise,
			LineWidth:   1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				// colors are premultiplied
				BlendEnable:         vk.True,
				SrcColorBlendFactor: vk.BlendFactorOne,
				DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
				ColorBlendOp:        vk.BlendOpAdd,
				SrcAlphaBlendFactor: vk.BlendFactorOneMinusDstAlpha,
				DstAlphaBlendFactor: vk.BlendFactorOne,
				AlphaBlendOp:        vk.BlendOpAdd,
				ColorWriteMask:      0xF,
			}},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateScissor,
				vk.DynamicStateViewport,
			},
		},
		Layout:     p.pipelineLayout,
		RenderPass: p.renderPass,
	}}

	pipelines := make([]vk.Pipeline, len(gpci))
	if err := vk.Error(vk.CreateGraphicsPipelines(p.device, nil, uint32(len(gpci)), gpci, nil, pipelines)); err != nil {
		return fmt.Errorf("vk.CreateGraphicsPipelines(): %s", err.Error())
	}
	p.pipeline = pipelines[0]
	return nil
}

func (p *Presenter) createFramebuffers() error {
	p.framebuffers = p.framebuffers[:0]
	for _, view := range p.views {
		fci := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      p.renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           p.extent.Width,
			Height:          p.extent.Height,
			Layers:          1,
		}

		var framebuffer vk.Framebuffer
		if err := vk.Error(vk.CreateFramebuffer(p.device, &fci, nil, &framebuffer)); err != nil {
			return fmt.Errorf("vk.CreateFramebuffer(): %s", err.Error())
		}
		p.framebuffers = append(p.framebuffers, framebuffer)
	}
	return nil
}

func (p *Presenter) createFrames() error {
	count := len(p.images)
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        p.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}
	commandBuffers := make([]vk.CommandBuffer, count)
	if err := vk.Error(vk.AllocateCommandBuffers(p.device, &cbai, commandBuffers)); err != nil {
		return fmt.Errorf("vk.AllocateCommandBuffers(): %s", err.Error())
	}

	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	for idx := 0; idx < count; idx++ {
		slot := &frameSlot{cmd: commandBuffers[idx]}
		p.frames = append(p.frames, slot)

		if err := vk.Error(vk.CreateSemaphore(p.device, &sci, nil, &slot.imageAvailable)); err != nil {
			return fmt.Errorf("vk.CreateSemaphore(): %s", err.Error())
		}
		if err := vk.Error(vk.CreateSemaphore(p.device, &sci, nil, &slot.renderFinished)); err != nil {
			return fmt.Errorf("vk.CreateSemaphore(): %s", err.Error())
		}
		if err := vk.Error(vk.CreateFence(p.device, &fci, nil, &slot.fence)); err != nil {
			return fmt.Errorf("vk.CreateFence(): %s", err.Error())
		}

		var err error
		if slot.vertices, err = NewBuffer(p.device, initialVertexBytes, vk.BufferUsageVertexBufferBit, p.allocator); err != nil {
			return err
		}
		if slot.indices, err = NewBuffer(p.device, initialIndexBytes, vk.BufferUsageIndexBufferBit, p.allocator); err != nil {
			return err
		}
	}
	return nil
}

// FramesInFlight returns how many frames may be recorded before the
// oldest one must have finished on the GPU.
func (p *Presenter) FramesInFlight() int {
	return len(p.frames)
}

// Extent returns the swapchain size in pixels.
func (p *Presenter) Extent() image.Point {
	return image.Pt(int(p.extent.Width), int(p.extent.Height))
}

// Acquire waits for the next frame slot and acquires a swapchain image,
// returning its size. ErrSwapchainStale means the surface changed or is
// empty, the frame should be skipped.
func (p *Presenter) Acquire() (image.Point, error) {
	if p.acquired {
		return p.Extent(), nil
	}
	if p.stale {
		if err := p.recreateSwapchain(); err != nil {
			return image.Point{}, err
		}
	}

	slot := p.frames[p.current]
	if err := vk.Error(vk.WaitForFences(p.device, 1, []vk.Fence{slot.fence}, vk.True, math.MaxUint64)); err != nil {
		return image.Point{}, fmt.Errorf("vk.WaitForFences(): %s", err.Error())
	}
	for _, buf := range slot.retired {
		buf.Release()
	}
	slot.retired = slot.retired[:0]
	slot.vertices.Reset()
	slot.indices.Reset()

	result := vk.AcquireNextImage(p.device, p.swapchain, math.MaxUint64, slot.imageAvailable, nil, &p.imageIndex)
	switch result {
	case vk.ErrorOutOfDate:
		p.stale = true
		return image.Point{}, ErrSwapchainStale
	case vk.Suboptimal:
		p.stale = true
	default:
		if err := vk.Error(result); err != nil {
			return image.Point{}, fmt.Errorf("vk.AcquireNextImage(): %s", err.Error())
		}
	}

	if err := vk.Error(vk.ResetFences(p.device, 1, []vk.Fence{slot.fence})); err != nil {
		return image.Point{}, fmt.Errorf("vk.ResetFences(): %s", err.Error())
	}
	p.acquired = true
	return p.Extent(), nil
}

// NewRecorder implements gfx.Device. It records into the acquired frame,
// clearing it with ClearColor.
func (p *Presenter) NewRecorder(target gfx.Target) (gfx.Recorder, error) {
	if !p.acquired {
		return nil, ErrFrameNotStarted
	}
	slot := p.frames[p.current]
	cmd := slot.cmd

	if err := vk.Error(vk.ResetCommandBuffer(cmd, 0)); err != nil {
		return nil, fmt.Errorf("vk.ResetCommandBuffer(): %s", err.Error())
	}
	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(cmd, &cbbi)); err != nil {
		return nil, fmt.Errorf("vk.BeginCommandBuffer()[%d]: %s", p.current, err.Error())
	}

	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor(p.ClearColor[:])
	rpbi := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  p.renderPass,
		Framebuffer: p.framebuffers[p.imageIndex],
		RenderArea: vk.Rect2D{
			Extent: p.extent,
		},
		ClearValueCount: 1,
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(cmd, &rpbi, vk.SubpassContentsInline)
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, p.pipeline)

	extent := target.Extent
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		Width:    float32(extent.X),
		Height:   float32(extent.Y),
		MinDepth: 0,
		MaxDepth: 1,
	}})

	scale := target.Scale
	if scale <= 0 {
		scale = 1
	}
	pc := pushConstant{
		ScreenSize: glm.Vec2{float32(extent.X), float32(extent.Y)}.Mul(1 / scale),
	}
	vk.CmdPushConstants(cmd, p.pipelineLayout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, uint32(unsafe.Sizeof(pc)), unsafe.Pointer(&pc))

	return &Recorder{
		presenter: p,
		slot:      slot,
		index:     p.current,
		cmd:       cmd,
	}, nil
}

// Submit submits a command buffer recorded for the acquired frame.
func (p *Presenter) Submit(cb gfx.CommandBuffer) error {
	buf, ok := cb.(*CommandBuffer)
	if !ok || buf.presenter != p {
		return fmt.Errorf("vkr: Submit of a command buffer from another device")
	}
	if !p.acquired || buf.index != p.current || buf.released {
		return ErrFrameNotStarted
	}
	slot := p.frames[p.current]

	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{slot.imageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{buf.cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{slot.renderFinished},
	}}
	if err := vk.Error(vk.QueueSubmit(p.queue, 1, submit, slot.fence)); err != nil {
		return fmt.Errorf("vk.QueueSubmit(): %s", err.Error())
	}
	return nil
}

// Present queues the acquired image for presentation and moves on to
// the next frame slot.
func (p *Presenter) Present() error {
	if !p.acquired {
		return ErrFrameNotStarted
	}
	slot := p.frames[p.current]
	p.acquired = false
	p.current = (p.current + 1) % len(p.frames)

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{slot.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{p.swapchain},
		PImageIndices:      []uint32{p.imageIndex},
	}

	result := vk.QueuePresent(p.queue, &presentInfo)
	if result == vk.ErrorOutOfDate || result == vk.Suboptimal {
		p.stale = true
		return nil
	}
	if err := vk.Error(result); err != nil {
		return fmt.Errorf("vk.QueuePresent(): %s", err.Error())
	}
	return nil
}

// Resize marks the swapchain for recreation at the next Acquire.
func (p *Presenter) Resize(width, height int) {
	p.extent = vk.Extent2D{Width: uint32(width), Height: uint32(height)}
	p.stale = true
}

func (p *Presenter) recreateSwapchain() error {
	if err := p.WaitIdle(); err != nil {
		return err
	}
	p.destroySwapchainViews()

	old := p.swapchain
	err := p.createSwapchain(old)
	vk.DestroySwapchain(p.device, old, nil)
	if err != nil {
		p.swapchain = nil
		return err
	}
	if err := p.createImageViews(); err != nil {
		return err
	}
	if err := p.createFramebuffers(); err != nil {
		return err
	}
	p.stale = false

	log.WithFields(log.Fields{
		"width":  p.extent.Width,
		"height": p.extent.Height,
	}).Debug("Swapchain recreated")
	return nil
}

func (p *Presenter) destroySwapchainViews() {
	for _, fb := range p.framebuffers {
		vk.DestroyFramebuffer(p.device, fb, nil)
	}
	p.framebuffers = p.framebuffers[:0]
	for _, view := range p.views {
		vk.DestroyImageView(p.device, view, nil)
	}
	p.views = p.views[:0]
}

// Destroy destroys the swapchain and pipeline. The device is left alive
// so its images can be released after.
func (p *Presenter) Destroy() {
	vk.DeviceWaitIdle(p.device)

	for _, slot := range p.frames {
		for _, buf := range slot.retired {
			buf.Release()
		}
		if slot.vertices != nil {
			slot.vertices.Release()
		}
		if slot.indices != nil {
			slot.indices.Release()
		}
		if slot.fence != nil {
			vk.DestroyFence(p.device, slot.fence, nil)
		}
		if slot.imageAvailable != nil {
			vk.DestroySemaphore(p.device, slot.imageAvailable, nil)
		}
		if slot.renderFinished != nil {
			vk.DestroySemaphore(p.device, slot.renderFinished, nil)
		}
		vk.FreeCommandBuffers(p.device, p.commandPool, 1, []vk.CommandBuffer{slot.cmd})
	}
	p.frames = nil

	for _, shader := range p.shaders {
		shader.Destroy()
	}
	p.shaders = nil

	if p.pipeline != nil {
		vk.DestroyPipeline(p.device, p.pipeline, nil)
	}
	if p.pipelineLayout != nil {
		vk.DestroyPipelineLayout(p.device, p.pipelineLayout, nil)
	}
	if p.renderPass != nil {
		vk.DestroyRenderPass(p.device, p.renderPass, nil)
	}
	p.destroySwapchainViews()
	if p.swapchain != nil {
		vk.DestroySwapchain(p.device, p.swapchain, nil)
	}
}
