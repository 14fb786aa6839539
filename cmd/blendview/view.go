package main

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/variant"
	"github.com/gdamore/tcell/v2"
)

const (
	mixStep    = 0.1
	jumpRows   = 6
	headerRows = 6
)

var (
	styleText   = tcell.StyleDefault
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBody   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleGround = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleError  = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// viewer renders the demo and turns key presses into parameter writes. Every method except
// post runs on the engine's callback goroutine, so the tree is never touched concurrently.
type viewer struct {
	screen tcell.Screen
	demo   *demo
	events chan tcell.Event
	quit   func()

	mix    float64
	status string
}

func newViewer(screen tcell.Screen, d *demo, quit func()) *viewer {
	return &viewer{
		screen: screen,
		demo:   d,
		events: make(chan tcell.Event, 64),
		quit:   quit,
	}
}

// post queues an event for the next frame. Events are dropped while the queue is full.
func (v *viewer) post(ev tcell.Event) {
	select {
	case v.events <- ev:
	default:
	}
}

// frame applies queued input and redraws.
func (v *viewer) frame(float64) {
	for {
		select {
		case ev := <-v.events:
			if !v.handle(ev) {
				v.quit()
				return
			}
		default:
			v.draw()
			return
		}
	}
}

// handle applies one event. It returns false when the viewer should exit.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.setMix(v.mix - mixStep)
		case tcell.KeyRight:
			v.setMix(v.mix + mixStep)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'a':
				v.setMix(v.mix - mixStep)
			case 'd':
				v.setMix(v.mix + mixStep)
			case ' ':
				v.toggleJump()
			case 'c':
				v.demo.tree.ClearCaches()
				v.status = "caches cleared"
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) setMix(amount float64) {
	v.mix = common.Clamp(amount, 0, 1)
	if err := v.demo.tree.SetParameter(mixParam, variant.Float(v.mix)); err != nil {
		v.status = err.Error()
	}
}

// toggleJump fires the one-shot, or aborts it while it plays.
func (v *viewer) toggleJump() {
	active := v.demo.tree.Parameter(jumpParam).AsBool()
	if err := v.demo.tree.SetParameter(jumpParam, variant.Bool(!active)); err != nil {
		v.status = err.Error()
		return
	}
	if active {
		v.status = "jump aborted"
	} else {
		v.status = "jump fired"
	}
}

func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	tree := v.demo.tree

	v.text(0, 0, styleText, "blendview  ←/→ or a/d: mix   space: jump   c: clear caches   q: quit")
	v.text(0, 1, styleText, fmt.Sprintf("mix %.1f  %s", v.mix, bar(v.mix, 20)))
	v.text(0, 2, styleText, fmt.Sprintf("idle %.2f  walk %.2f  jump %.2f",
		tree.ConnectionActivity("parameters/mix", 0),
		tree.ConnectionActivity("parameters/mix", 1),
		tree.ConnectionActivity("parameters/jump", 1)))
	sound := "off"
	if v.demo.speaker.IsPlaying() {
		sound = "on"
	}
	v.text(0, 3, styleDim, fmt.Sprintf("pass %d  tracks %d  sound %s", tree.Pass(), tree.TrackCount(), sound))
	if reason := tree.InvalidReason(); reason != "" {
		v.text(0, 4, styleError, strings.ReplaceAll(reason, "\n", " "))
	} else if v.status != "" {
		v.text(0, 4, styleDim, v.status)
	}

	ground := h - 2
	if ground <= headerRows || w < 3 {
		v.screen.Show()
		return
	}
	for x := 0; x < w; x++ {
		v.screen.SetContent(x, ground, '_', nil, styleGround)
	}

	col, row := bodyCell(v.demo.body.Position().X, v.demo.body.Position().Y, w, ground)
	v.screen.SetContent(col, row, '@', nil, styleBody)
	v.screen.Show()
}

// bodyCell maps a body position to a cell: x in [-1, 1] spans the width, y lifts the body
// jumpRows rows per unit above the ground row.
func bodyCell(x, y float64, width, ground int) (col, row int) {
	col = int((common.Clamp(x, -1, 1) + 1) / 2 * float64(width-1))
	row = ground - 1 - int(y*jumpRows+0.5)
	return col, max(row, headerRows)
}

func (v *viewer) text(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func bar(amount float64, width int) string {
	filled := int(amount*float64(width) + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
