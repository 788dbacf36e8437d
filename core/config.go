// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Configuration defines a global configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Renderer RendererConfiguration
	Gui      GuiConfiguration

	// LogLevel is a logrus level name
	LogLevel string
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the delay between event polls in milliseconds
	EventPollDelay int
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	SwapchainSize    uint32
	DeviceExtensions []string
	ShaderDirectory  string
	DebugMode        bool

	ScreenWidth  uint32
	ScreenHeight uint32
}

// GuiConfiguration is used to configure the UI integration
type GuiConfiguration struct {
	// FramesInFlight is how many frames a released texture is kept
	// alive for. Zero follows the swapchain size, or
	// DefaultFramesInFlight without one. A negative value releases
	// immediately, which is only safe when every submitted frame has
	// completed before the next one is built.
	FramesInFlight int

	// ScaleFactor overrides the pixels per point reported by the
	// window when above zero.
	ScaleFactor float32

	// AssetArchive is a kar archive with images to register on start.
	AssetArchive string
}

// DefaultConfiguration returns the configuration used when nothing
// else is set.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  5,
		},
		Renderer: RendererConfiguration{
			ScreenWidth:   800,
			ScreenHeight:  600,
			SwapchainSize: 3,
			DeviceExtensions: []string{
				"VK_KHR_swapchain",
			},
			ShaderDirectory: "./assets/shaders",
		},
		LogLevel: "info",
	}
}

// DefaultFramesInFlight is the release delay used when neither the UI
// nor the renderer configures one.
const DefaultFramesInFlight = 3

// FramesInFlight resolves the number of frames a texture must outlive,
// zero meaning immediate release.
func (c Configuration) FramesInFlight() int {
	switch {
	case c.Gui.FramesInFlight > 0:
		return c.Gui.FramesInFlight
	case c.Gui.FramesInFlight < 0:
		return 0
	case c.Renderer.SwapchainSize > 0:
		return int(c.Renderer.SwapchainSize)
	}
	return DefaultFramesInFlight
}

// releaseDelay resolves FramesInFlight without a renderer to follow.
func (c GuiConfiguration) releaseDelay() int {
	return Configuration{Gui: c}.FramesInFlight()
}

// Environment variables read by LoadConfiguration
const (
	EnvFramesPerSecond = "KORUGUI_FPS"
	EnvEventPollDelay  = "KORUGUI_EVENT_POLL_DELAY"
	EnvScreenWidth     = "KORUGUI_SCREEN_WIDTH"
	EnvScreenHeight    = "KORUGUI_SCREEN_HEIGHT"
	EnvSwapchainSize   = "KORUGUI_SWAPCHAIN_SIZE"
	EnvShaderDirectory = "KORUGUI_SHADER_DIR"
	EnvDebugMode       = "KORUGUI_VK_DEBUG"
	EnvFramesInFlight  = "KORUGUI_FRAMES_IN_FLIGHT"
	EnvScaleFactor     = "KORUGUI_SCALE_FACTOR"
	EnvAssetArchive    = "KORUGUI_ASSETS"
	EnvLogLevel        = "KORUGUI_LOG_LEVEL"
)

// LoadConfiguration loads the given .env files into the environment and
// overlays KORUGUI_* variables over DefaultConfiguration. Variables
// already set in the environment win over the files.
func LoadConfiguration(files ...string) (Configuration, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return Configuration{}, fmt.Errorf("core: load %s: %w", strings.Join(files, ", "), err)
		}
	}
	envy.Reload()

	cfg := DefaultConfiguration()
	var p envParser
	p.int(EnvFramesPerSecond, &cfg.Time.FramesPerSecond)
	p.int(EnvEventPollDelay, &cfg.Time.EventPollDelay)
	p.uint32(EnvScreenWidth, &cfg.Renderer.ScreenWidth)
	p.uint32(EnvScreenHeight, &cfg.Renderer.ScreenHeight)
	p.uint32(EnvSwapchainSize, &cfg.Renderer.SwapchainSize)
	p.bool(EnvDebugMode, &cfg.Renderer.DebugMode)
	p.int(EnvFramesInFlight, &cfg.Gui.FramesInFlight)
	p.float32(EnvScaleFactor, &cfg.Gui.ScaleFactor)
	cfg.Renderer.ShaderDirectory = envy.Get(EnvShaderDirectory, cfg.Renderer.ShaderDirectory)
	cfg.Gui.AssetArchive = envy.Get(EnvAssetArchive, cfg.Gui.AssetArchive)
	cfg.LogLevel = envy.Get(EnvLogLevel, cfg.LogLevel)
	if p.err != nil {
		return Configuration{}, p.err
	}

	if cfg.Renderer.ScreenWidth == 0 || cfg.Renderer.ScreenHeight == 0 {
		return Configuration{}, fmt.Errorf("core: screen size %dx%d must be non-zero", cfg.Renderer.ScreenWidth, cfg.Renderer.ScreenHeight)
	}
	if cfg.Gui.ScaleFactor < 0 {
		return Configuration{}, fmt.Errorf("core: negative scale factor %v", cfg.Gui.ScaleFactor)
	}
	return cfg, nil
}

// ConfigureLogging applies a logrus level name to the standard logger.
func ConfigureLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("core: %w", err)
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

// envParser keeps the first parse error.
type envParser struct {
	err error
}

func (p *envParser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v := envy.Get(key, "")
	return v, v != ""
}

func (p *envParser) fail(key, v string, err error) {
	p.err = fmt.Errorf("core: %s=%q: %w", key, v, err)
}

func (p *envParser) int(key string, dst *int) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (p *envParser) uint32(key string, dst *uint32) {
	if v, ok := p.lookup(key); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = uint32(n)
	}
}

func (p *envParser) float32(key string, dst *float32) {
	if v, ok := p.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = float32(f)
	}
}

func (p *envParser) bool(key string, dst *bool) {
	if v, ok := p.lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			p.fail(key, v, err)
			return
		}
		*dst = b
	}
}
