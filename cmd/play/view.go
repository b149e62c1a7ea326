package main

import (
	"fmt"

	"github.com/gdamore/tcell"

	"geopits.dev/internal/sim/board"
	"geopits.dev/internal/sim/world"
)

const (
	glyphPlayer = '@'
	glyphEmpty  = '.'
	glyphCell   = '·'
	glyphTrail  = '*'
	glyphMany   = '+'
)

var (
	styleCell   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCache  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	stylePlayer = tcell.StyleDefault.Foreground(tcell.ColorLightGreen).Bold(true)
	styleTrail  = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleStatus = tcell.StyleDefault.Reverse(true)
)

// gameView renders one world centred on the player. North is up, east is
// right. The bottom two rows hold the status and message lines.
type gameView struct {
	w   *world.World
	msg string
}

func newView(w *world.World) *gameView {
	return &gameView{w: w, msg: "arrows/hjkl move, c collect, d deposit, r reset, q quit"}
}

// HandleKey applies one key press and reports whether the player quit.
func (v *gameView) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		v.step(world.North)
	case tcell.KeyDown:
		v.step(world.South)
	case tcell.KeyRight:
		v.step(world.East)
	case tcell.KeyLeft:
		v.step(world.West)
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k':
			v.step(world.North)
		case 'j':
			v.step(world.South)
		case 'l':
			v.step(world.East)
		case 'h':
			v.step(world.West)
		case 'c':
			v.collect()
		case 'd':
			v.deposit()
		case 'r':
			v.w.Reset()
			v.msg = "reset: all tokens returned"
		case 'q':
			return true
		}
	}
	return false
}

func (v *gameView) step(d world.Direction) {
	if _, err := v.w.Step(d); err != nil {
		v.msg = err.Error()
		return
	}
	v.msg = ""
}

func (v *gameView) collect() {
	cell := v.w.Player().Cell
	site, ok := v.w.ActiveSite(cell)
	if !ok {
		v.msg = "no cache here"
		return
	}
	for _, t := range site.Tokens() {
		if t.Collected() {
			continue
		}
		res := v.w.CollectFrom(site, t.LocalID())
		v.msg = fmt.Sprintf("collect %s: %s", t.Key(), res.Code)
		return
	}
	v.msg = "cache is empty"
}

func (v *gameView) deposit() {
	cell := v.w.Player().Cell
	res := v.w.OnDepositRequest(cell)
	switch {
	case res.Code == world.TransferStale:
		v.msg = "no cache here"
	case res.OK():
		v.msg = fmt.Sprintf("deposit %s: %s", res.Token.Key(), res.Code)
	default:
		v.msg = "deposit: " + string(res.Code)
	}
}

func (v *gameView) Draw(scr tcell.Screen) {
	scr.Clear()
	width, height := scr.Size()
	mapH := height - 2
	if mapH < 1 || width < 1 {
		return
	}

	p := v.w.Player()
	r := v.w.Config().NeighborhoodRadius
	cx, cy := width/2, mapH/2

	trail := map[board.CellRef]bool{}
	b := v.w.Board()
	for _, pos := range v.w.History() {
		if c, err := b.ToCell(pos.X, pos.Y); err == nil {
			trail[c.Ref()] = true
		}
	}

	for y := 0; y < mapH; y++ {
		for x := 0; x < width; x++ {
			di, dj := cy-y, x-cx
			if di < -r || di > r || dj < -r || dj > r {
				continue
			}
			ref := board.CellRef{I: p.Cell.I + di, J: p.Cell.J + dj}
			ch, st := glyphCell, styleCell
			if trail[ref] {
				ch, st = glyphTrail, styleTrail
			}
			if site, ok := v.w.ActiveSite(ref); ok {
				ch, st = cacheGlyph(site.RemainingCount()), styleCache
			}
			if di == 0 && dj == 0 {
				ch, st = glyphPlayer, stylePlayer
			}
			scr.SetContent(x, y, ch, nil, st)
		}
	}

	status := fmt.Sprintf(" points:%d cell:%s held:%d caches:%d ", p.Points, p.Cell, len(p.Held), len(v.w.GetActiveCacheSites()))
	drawLine(scr, 0, height-2, width, status, styleStatus)
	drawLine(scr, 0, height-1, width, v.msg, tcell.StyleDefault)
}

func cacheGlyph(remaining int) rune {
	switch {
	case remaining == 0:
		return glyphEmpty
	case remaining > 9:
		return glyphMany
	}
	return rune('0' + remaining)
}

func drawLine(scr tcell.Screen, x, y, width int, s string, st tcell.Style) {
	for _, ch := range s {
		if x >= width {
			return
		}
		scr.SetContent(x, y, ch, nil, st)
		x++
	}
}
