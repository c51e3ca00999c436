// Command gomeboy is the minimal reference frontend exercising the
// Loader/Machine contract end-to-end: it reads a ROM (and optional
// BIOS/battery file) from disk, drives the emulator on its own
// goroutine, and renders frames into a fyne canvas.
package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/urfave/cli"
	"golang.design/x/clipboard"
	"golang.org/x/image/draw"

	"github.com/thelolagemann/gomeboy/internal/io"
	"github.com/thelolagemann/gomeboy/internal/log"
	"github.com/thelolagemann/gomeboy/internal/machine"
	"github.com/thelolagemann/gomeboy/internal/ppu"
	"github.com/thelolagemann/gomeboy/internal/ppu/colorcorrect"
)

// smoothScale upscales a native 160x144 frame by an integer factor
// using a Catmull-Rom resampler, for the --smooth display mode -- a
// sharper alternative to letting the canvas's own nearest-neighbor
// ImageScalePixels mode do the upscaling.
const smoothScaleFactor = 4

func smoothScale(dst *image.NRGBA, src *image.NRGBA) {
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
}

// keyMap mirrors the teacher's pkg/display/fyne key bindings, adapted
// to this core's Button ordering (A,B,Start,Select,Up,Down,Left,Right).
var keyMap = map[fyne.KeyName]io.Button{
	fyne.KeyA:         io.ButtonA,
	fyne.KeyS:         io.ButtonB,
	fyne.KeyReturn:    io.ButtonStart,
	fyne.KeyBackspace: io.ButtonSelect,
	fyne.KeyRight:     io.ButtonRight,
	fyne.KeyLeft:      io.ButtonLeft,
	fyne.KeyUp:        io.ButtonUp,
	fyne.KeyDown:      io.ButtonDown,
}

func main() {
	app := cli.NewApp()
	app.Name = "gomeboy"
	app.Usage = "gomeboy [options] <ROM file>"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "path to the ROM file (.gb/.gbc, optionally .gz/.zip/.7z)"},
		cli.StringFlag{Name: "bios", Usage: "path to an optional boot ROM"},
		cli.StringFlag{Name: "save", Usage: "path to the battery save file (created on exit if the cartridge has one)"},
		cli.BoolFlag{Name: "overclock", Usage: "run at 4x speed from startup"},
		cli.StringFlag{Name: "tonemap", Value: "matrix", Usage: "CGB color correction: identity, pandocs, or matrix"},
		cli.BoolFlag{Name: "smooth", Usage: "upscale with Catmull-Rom resampling instead of nearest-neighbor"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return fmt.Errorf("gomeboy: no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	savePath := c.String("save")
	if savePath == "" {
		savePath = romPath + ".sav"
	}

	loader := &fileLoader{romPath: romPath, biosPath: c.String("bios"), batteryPath: savePath}

	m := machine.New(loader, log.New())
	if err := m.Reset(); err != nil {
		return fmt.Errorf("gomeboy: %w", err)
	}
	m.Bus.PPU.Tonemap = parseTonemap(c.String("tonemap"))
	if c.Bool("overclock") {
		m.Overclock(1)
	}

	clipboardReady := clipboard.Init() == nil

	fyneApp := app.NewWithID("gomeboy.reference-frontend")
	win := fyneApp.NewWindow("gomeboy")
	win.Resize(fyne.NewSize(ppu.ScreenWidth*4, ppu.ScreenHeight*4))

	smooth := c.Bool("smooth")
	img := image.NewNRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	displayImg := img
	if smooth {
		displayImg = image.NewNRGBA(image.Rect(0, 0, ppu.ScreenWidth*smoothScaleFactor, ppu.ScreenHeight*smoothScaleFactor))
	}
	raster := canvas.NewImageFromImage(displayImg)
	raster.ScaleMode = canvas.ImageScalePixels
	raster.SetMinSize(fyne.NewSize(ppu.ScreenWidth, ppu.ScreenHeight))
	win.SetContent(raster)

	var buttons uint8
	if desk, ok := win.Canvas().(desktop.Canvas); ok {
		desk.SetOnKeyDown(func(e *fyne.KeyEvent) {
			if b, ok := keyMap[e.Name]; ok {
				buttons |= 1 << b
				m.ButtonStates(buttons)
			} else if e.Name == fyne.KeyF2 && clipboardReady {
				copyScreenshotToClipboard(displayImg)
			} else if e.Name == fyne.KeyTab {
				m.Overclock(1)
			}
		})
		desk.SetOnKeyUp(func(e *fyne.KeyEvent) {
			if b, ok := keyMap[e.Name]; ok {
				buttons &^= 1 << b
				m.ButtonStates(buttons)
			} else if e.Name == fyne.KeyTab {
				m.Overclock(0)
			}
		})
	}

	stop := make(chan struct{})
	go m.RunEventLoop(stop)

	// The emulator thread only flips a flag at VBlank; the frontend
	// thread (the ticker goroutine below) does the actual pixel copy and owns img
	// and displayImg exclusively, so the two threads never touch the
	// same bytes concurrently.
	var frameReady atomic.Bool
	m.SetNotifyVBlank(func() { frameReady.Store(true) })

	go func() {
		tick := time.NewTicker(time.Second / 60)
		defer tick.Stop()
		for range tick.C {
			if !frameReady.CompareAndSwap(true, false) {
				continue
			}
			writeFrame(img, m.RequestNextFrame())
			if smooth {
				smoothScale(displayImg, img)
			}
			raster.Refresh()
		}
	}()

	win.SetOnClosed(func() {
		close(stop)
		if err := m.WriteBattery(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	})

	win.ShowAndRun()
	return nil
}

func parseTonemap(name string) colorcorrect.Mode {
	switch name {
	case "pandocs":
		return colorcorrect.FastPandocs
	case "identity":
		return colorcorrect.Identity
	default:
		return colorcorrect.Matrix
	}
}

// writeFrame copies a PPU frame into the NRGBA image the canvas draws,
// per spec.md's RGBA8-with-opaque-alpha framebuffer pixel format.
func writeFrame(img *image.NRGBA, frame ppu.Frame) {
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			px := frame[y][x]
			img.SetNRGBA(x, y, color.NRGBA{R: px[0], G: px[1], B: px[2], A: 0xFF})
		}
	}
}

// copyScreenshotToClipboard PNG-encodes the current frame and copies it
// to the system clipboard, adapted from the teacher's
// pkg/utils.CopyImage.
func copyScreenshotToClipboard(img image.Image) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
}
