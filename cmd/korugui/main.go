// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/packr"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/korugui/core"
	"github.com/devblok/korugui/imui"
	"github.com/devblok/korugui/input"
	"github.com/devblok/korugui/model"
	"github.com/devblok/korugui/platform"
	"github.com/devblok/korugui/utility/kar"
	"github.com/devblok/korugui/vkr"
)

func init() {
	runtime.LockOSThread()
}

var (
	envFile    = flag.String("env", "", "Load configuration from the given .env file")
	cpuProfile = flag.String("cpuprofile", "", "Write a cpu profile to the given file")
	traceFile  = flag.String("trace", "", "Write an execution trace to the given file")
)

// demo holds the state the layout edits between frames.
type demo struct {
	clicks     int
	showImages bool
	images     []model.TextureID
}

func (d *demo) layout(ui *imui.Context) {
	screen := ui.ScreenRect()
	panel := model.NewRect(16, 16, 260, screen.Height()-32)
	ui.Panel(panel, func() {
		y := panel.Min.Y() + 8
		row := func(h float32) model.Rect {
			r := model.NewRect(panel.Min.X()+8, y, panel.Width()-16, h)
			y += h + 6
			return r
		}

		ui.Label(row(20), "KoruGUI")
		if ui.Button(row(28), "Click me") {
			d.clicks++
		}
		ui.Label(row(20), fmt.Sprintf("Clicked %d times", d.clicks))
		ui.Checkbox(row(20), "Show images", &d.showImages)

		if pos, ok := ui.PointerPos(); ok {
			ui.Label(row(20), fmt.Sprintf("Pointer %.0f, %.0f", pos.X(), pos.Y()))
		}

		if !d.showImages {
			return
		}
		for _, id := range d.images {
			r := row(96)
			ui.Image(id, model.Rect{Min: r.Min, Max: r.Min.Add(glm.Vec2{96, 96})}, model.White)
		}
	})
}

func main() {
	flag.Parse()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.WithError(err).Fatal("Could not create cpu profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.WithError(err).Fatal("Could not start cpu profile")
		}
		defer pprof.StopCPUProfile()
	}
	if *traceFile != "" {
		f, err := os.Create(*traceFile)
		if err != nil {
			log.WithError(err).Fatal("Could not create trace file")
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			log.WithError(err).Fatal("Could not start trace")
		}
		defer trace.Stop()
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	configuration, err := core.LoadConfiguration(files...)
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if err := core.ConfigureLogging(configuration.LogLevel); err != nil {
		log.WithError(err).Fatal("Invalid log level")
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		panic(err)
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		panic(err)
	}
	defer sdl.VulkanUnloadLibrary()

	window, err := platform.NewWindow("KoruGUI",
		int(configuration.Renderer.ScreenWidth),
		int(configuration.Renderer.ScreenHeight))
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	instance, err := vkr.NewInstance(vkr.DefaultApplicationInfo, sdl.VulkanGetVkGetInstanceProcAddr(), vkr.InstanceConfiguration{
		DebugMode:  configuration.Renderer.DebugMode,
		Extensions: window.VulkanInstanceExtensions(),
		Layers:     []string{},
	})
	if err != nil {
		panic(err)
	}
	defer instance.Destroy()

	surface, err := window.CreateSurface(instance.Inner())
	if err != nil {
		panic(err)
	}
	instance.SetSurface(surface)

	device, err := vkr.NewDevice(instance, configuration.Renderer)
	if err != nil {
		panic(err)
	}
	defer device.Destroy()

	presenter, err := vkr.NewPresenter(device, configuration.Renderer, shaderSource(configuration.Renderer.ShaderDirectory))
	if err != nil {
		panic(err)
	}
	defer presenter.Destroy()
	presenter.ClearColor = [4]float32{0.08, 0.09, 0.11, 1}

	guiCfg := configuration.Gui
	guiCfg.FramesInFlight = configuration.FramesInFlight()
	if n := presenter.FramesInFlight(); configuration.Gui.FramesInFlight == 0 && n > guiCfg.FramesInFlight {
		// the driver may hand out more images than asked for
		guiCfg.FramesInFlight = n
	}
	if guiCfg.FramesInFlight == 0 {
		guiCfg.FramesInFlight = -1
	}
	drawable := window.DrawableSize()
	gui := core.NewGui(guiCfg, presenter, drawable.X, drawable.Y, window.Scale())

	d := &demo{showImages: true}
	if guiCfg.AssetArchive != "" {
		d.images, err = registerArchive(gui, guiCfg.AssetArchive)
		if err != nil {
			log.WithError(err).WithField("archive", guiCfg.AssetArchive).Error("Assets not loaded")
		}
	}

	time := core.NewTime(configuration.Time)
	defer time.Stop()

EventLoop:
	for {
		select {
		case <-time.EventTicker().C:
			if !pollEvents(window, gui, presenter) {
				break EventLoop
			}
		case <-time.FpsTicker().C:
			if !pollEvents(window, gui, presenter) {
				break EventLoop
			}
			if err := drawFrame(window, gui, presenter, d); err != nil {
				log.WithError(err).Error("Frame failed")
				break EventLoop
			}
		}
	}
	log.Info("Event loop exited")

	if err := device.WaitIdle(); err != nil {
		log.WithError(err).Warn("Device did not go idle")
	}
	gui.Destroy()
}

// pollEvents feeds pending window events to the UI. It returns false
// once the window is asked to close.
func pollEvents(window *platform.Window, gui *core.Gui, presenter *vkr.Presenter) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		for _, ev := range window.Translate(event) {
			switch e := ev.(type) {
			case input.CloseRequested:
				return false
			case input.ScaleChanged:
				presenter.Resize(e.Width, e.Height)
			case input.Resized:
				presenter.Resize(e.Width, e.Height)
			}
			gui.Update(ev)
		}
	}
	return true
}

func drawFrame(window *platform.Window, gui *core.Gui, presenter *vkr.Presenter, d *demo) error {
	extent, err := presenter.Acquire()
	if errors.Is(err, vkr.ErrSwapchainStale) {
		return nil
	} else if err != nil {
		return err
	}

	gui.ImmediateUI(d.layout)
	cb, err := gui.Draw(window, extent)
	if err != nil {
		return err
	}
	defer cb.Release()

	if err := presenter.Submit(cb); err != nil {
		return err
	}
	return presenter.Present()
}

// shaderSource reads shaders from dir when it exists, from the packed
// box otherwise.
func shaderSource(dir string) vkr.ShaderSource {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		log.WithField("dir", dir).Debug("Shaders read from directory")
		return vkr.DirSource(dir)
	}
	return packr.NewBox("../../assets/shaders")
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

// registerArchive uploads every image in a kar archive.
func registerArchive(gui *core.Gui, path string) ([]model.TextureID, error) {
	archive, err := kar.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	var ids []model.TextureID
	for _, name := range archive.Names() {
		if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		data, err := archive.ReadAll(name)
		if err != nil {
			return ids, err
		}
		ids = append(ids, gui.RegisterUserImage(data))
		log.WithField("name", name).Debug("Image registered")
	}
	return ids, nil
}
