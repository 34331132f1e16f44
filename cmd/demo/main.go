// Demo dashboard: drives the scheduler from a real tick source and renders
// live stats with tcell. Every moving part on screen is a registered
// animation, one per priority tier.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/willibrandon/mtlog"
	"github.com/willibrandon/mtlog/core"

	"github.com/lixenwraith/framepacer/anim"
	"github.com/lixenwraith/framepacer/clock"
)

var (
	rate    = flag.Float64("rate", 60, "tick source refresh rate (Hz)")
	logPath = flag.String("log", "framepacer-demo.log", "structured log file")
	stress  = flag.Bool("stress", false, "start with the stress animation enabled")
)

func main() {
	flag.Parse()

	logger := mtlog.New(
		mtlog.WithFile(*logPath),
		mtlog.WithMinimumLevel(core.DebugLevel),
	)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "screen init: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	provider := clock.NewMonotonicTimeProvider()
	mgr := anim.New(anim.Config{
		TimeProvider: provider,
		FrameSource:  clock.NewTickerSource(provider, *rate),
		Logger:       logger,
	})
	defer mgr.StopAll()

	d := &dashboard{screen: screen, mgr: mgr, start: time.Now()}
	d.registerAnimations()
	if *stress {
		d.toggleStress()
	}

	for {
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if !d.handleKey(ev) {
				return
			}
		}
	}
}

type dashboard struct {
	screen tcell.Screen
	mgr    *anim.Manager
	start  time.Time

	spinnerIdx int
	wavePhase  float64
	sparkles   []sparkle
	paused     bool
	stressOn   atomic.Bool
}

type sparkle struct {
	x, y int
	age  int
}

var spinnerRunes = []rune{'|', '/', '-', '\\'}

func (d *dashboard) registerAnimations() {
	// Critical: the spinner must never visibly stall
	d.mgr.Register("spinner", func(now time.Time) {
		d.spinnerIdx = (d.spinnerIdx + 1) % len(spinnerRunes)
	}, anim.Options{Priority: anim.PriorityCritical, FPS: 15})

	// High: wave phase advance
	d.mgr.Register("wave", func(now time.Time) {
		d.wavePhase += 0.2
	}, anim.Options{Priority: anim.PriorityHigh})

	// Normal: the renderer itself is just another animation
	d.mgr.Register("render", func(now time.Time) {
		d.draw()
	}, anim.Options{Priority: anim.PriorityNormal})

	// Low: decorative sparkles, first to go under load or reduced motion
	d.mgr.Register("sparkle", func(now time.Time) {
		w, h := d.screen.Size()
		if w > 0 && h > 10 {
			d.sparkles = append(d.sparkles, sparkle{x: rand.Intn(w), y: 10 + rand.Intn(h-10)})
		}
		live := d.sparkles[:0]
		for _, s := range d.sparkles {
			s.age++
			if s.age < 8 {
				live = append(live, s)
			}
		}
		d.sparkles = live
	}, anim.Options{Priority: anim.PriorityLow, FPS: 20})
}

func (d *dashboard) toggleStress() {
	if d.stressOn.Load() {
		d.mgr.Unregister("stress")
		d.stressOn.Store(false)
		return
	}
	// Burns real time to force planning drops and, eventually, the
	// degradation policy
	d.mgr.Register("stress", func(now time.Time) {
		deadline := time.Now().Add(12 * time.Millisecond)
		for time.Now().Before(deadline) {
		}
	}, anim.Options{Priority: anim.PriorityHigh})
	d.stressOn.Store(true)
}

func (d *dashboard) handleKey(ev *tcell.EventKey) bool {
	switch {
	case ev.Key() == tcell.KeyEscape, ev.Rune() == 'q':
		return false
	case ev.Rune() == 'p':
		if d.paused {
			d.mgr.ResumeAll()
		} else {
			d.mgr.PauseAll()
		}
		d.paused = !d.paused
	case ev.Rune() == 'm':
		d.mgr.SetReducedMotion(!d.mgr.Stats().ReducedMotion)
	case ev.Rune() == 's':
		d.toggleStress()
	case ev.Rune() == '+':
		d.mgr.SetGlobalFPSLimit(d.mgr.Stats().GlobalFPSLimit + 10)
	case ev.Rune() == '-':
		d.mgr.SetGlobalFPSLimit(d.mgr.Stats().GlobalFPSLimit - 10)
	}
	return true
}

func (d *dashboard) draw() {
	s := d.mgr.Stats()
	scr := d.screen
	scr.Clear()

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	accent := tcell.StyleDefault.Foreground(tcell.ColorAqua)

	putText(scr, 2, 1, accent, fmt.Sprintf("framepacer %c  up %s",
		spinnerRunes[d.spinnerIdx], time.Since(d.start).Truncate(time.Second)))

	lines := []string{
		fmt.Sprintf("fps          %6.1f   limit %3.0f", s.FPS, s.GlobalFPSLimit),
		fmt.Sprintf("frame time   %6.2f ms", s.FrameTimeMs),
		fmt.Sprintf("budget used  %6.1f %%", s.BudgetUtilization*100),
		fmt.Sprintf("dropped      %6d", s.DroppedFrames),
		fmt.Sprintf("animations   %6d (queued %d)", s.ActiveAnimations, s.QueuedAnimations),
		fmt.Sprintf("paused=%v reduced-motion=%v stress=%v", s.Paused, s.ReducedMotion, d.stressOn.Load()),
	}
	for i, line := range lines {
		putText(scr, 2, 3+i, style, line)
	}

	w, _ := scr.Size()
	for x := 0; x < w; x++ {
		y := 11 + int(2*math.Sin(d.wavePhase+float64(x)/6))
		scr.SetContent(x, y, '~', nil, accent)
	}
	for _, sp := range d.sparkles {
		scr.SetContent(sp.x, sp.y, '*', nil, style.Dim(sp.age > 4))
	}

	putText(scr, 2, 15, style.Dim(true), "[p]ause  [m]otion  [s]tress  [+/-] limit  [q]uit")
	scr.Show()
}

func putText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		s.SetContent(x+i, y, r, nil, style)
	}
}
