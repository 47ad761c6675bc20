package debug

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-studio/internal/scene"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh FPS/Mem text every N frames to reduce allocations.
	updateInterval = 30
	maxErrorRunes  = 160
)

// Source supplies the live values the overlay shows. Any field may be nil.
type Source struct {
	Status    func() string
	LastError func() string
	Counts    func() scene.Census
}

// Debug draws runtime overlays in the top-right corner: FPS and memory when enabled, the
// generation status and scene census always, and the session's last error in red.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	src          Source
	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastMemStats runtime.MemStats
}

// New returns an overlay reading from src with FPS and memory hidden.
func New(src Source) *Debug {
	return &Debug{src: src}
}

// SetShowFPS sets whether the FPS counter is drawn (green).
func (d *Debug) SetShowFPS(show bool) {
	d.ShowFPS = show
}

// SetShowMemAlloc sets whether the memory allocation counter is drawn (under FPS).
func (d *Debug) SetShowMemAlloc(show bool) {
	d.ShowMemAlloc = show
}

// Draw renders the overlays. Call after the scene and the chat bar in the draw loop.
func (d *Debug) Draw() {
	d.frameCount++
	update := (d.frameCount % updateInterval) == 0
	if d.ShowFPS && d.lastFpsText == "" {
		update = true
	}
	if d.ShowMemAlloc && d.lastMemText == "" {
		update = true
	}

	y := int32(padding)
	if d.ShowFPS {
		if update {
			d.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		y = drawRight(d.lastFpsText, y, rl.Green)
	}
	if d.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&d.lastMemStats)
			mb := float64(d.lastMemStats.Alloc) / (1024 * 1024)
			d.lastMemText = fmt.Sprintf("Mem: %.2f MiB", mb)
		}
		y = drawRight(d.lastMemText, y, rl.Green)
	}
	if d.src.Counts != nil {
		c := d.src.Counts()
		y = drawRight(fmt.Sprintf("meshes %d  lights %d  lines %d", c.Meshes, c.Lights, c.Lines), y, rl.LightGray)
	}
	if d.src.Status != nil {
		if s := d.src.Status(); s != "idle" {
			y = drawRight(s+"...", y, rl.Yellow)
		}
	}
	if d.src.LastError != nil {
		if msg := d.src.LastError(); msg != "" {
			drawRight(truncate(msg, maxErrorRunes), y, rl.Red)
		}
	}
}

// drawRight draws text right-aligned at y and returns the next line's y.
func drawRight(text string, y int32, color rl.Color) int32 {
	if text == "" {
		return y
	}
	w := rl.MeasureText(text, fontSize)
	x := int32(rl.GetScreenWidth()) - w - padding
	if x < padding {
		x = padding
	}
	rl.DrawText(text, x, y, fontSize, color)
	return y + lineHeight
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
