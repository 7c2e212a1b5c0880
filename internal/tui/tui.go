// Package tui renders a study session in the terminal. Layout targets come
// from the session; an anim.Animator owns every in-between frame.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/peterkuimelis/omen/internal/anim"
	"github.com/peterkuimelis/omen/internal/deck"
)

const (
	frameInterval = time.Second / 60

	cardCols = 5
	cardRows = 3
	// cells per layout point
	xScale = cardCols / deck.CardSize
	yScale = cardRows / deck.CardSize

	marginX = 2
	marginY = 3 // rows above the origin, room for the selected-card lift
)

// App is the terminal front-end for one session.
type App struct {
	screen   tcell.Screen
	session  *deck.Session
	animator *anim.Animator

	width, height int
	status        string
}

// New creates an App drawing the session on an initialised screen.
func New(screen tcell.Screen, session *deck.Session) *App {
	a := &App{
		screen:   screen,
		session:  session,
		animator: anim.NewAnimator(),
	}
	a.width, a.height = screen.Size()
	a.retarget()
	return a
}

// ViewportWidth is the screen width expressed in layout points.
func (a *App) ViewportWidth() float64 {
	return float64(a.width-2*marginX) / xScale
}

// Run processes input, session changes and animation frames until the
// user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	changed, unsubscribe := a.session.Subscribe()
	defer unsubscribe()

	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go forwardEvents(a.screen, events, done)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	last := time.Now()

	a.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if a.handleEvent(ev) {
				return nil
			}
		case _, ok := <-changed:
			if !ok {
				return errors.New("session closed")
			}
			a.retarget()
		case now := <-ticker.C:
			a.animator.Step(now.Sub(last).Seconds())
			last = now
			a.draw()
		}
	}
}

// forwardEvents feeds polled screen events into events until the screen is
// finalised or done is closed.
func forwardEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	defer close(events)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func (a *App) retarget() {
	a.animator.Retarget(a.session.LayoutPositions(a.ViewportWidth()))
}

// handleEvent applies one input event. It reports whether to quit.
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.width, a.height = ev.Size()
		a.screen.Sync()
		a.retarget()
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return false
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	var err error
	switch ev.Rune() {
	case 'q':
		return true
	case 'n':
		a.session.Advance()
	case 'c', ' ':
		err = a.session.LevelUp()
	case 'x':
		err = a.session.Complete()
	case 'g':
		a.session.CycleLayout()
	case 'r':
		a.session.Reset()
	default:
		return false
	}
	a.status = ""
	if err != nil {
		a.status = err.Error()
	}
	return false
}

// --- Drawing ---

func (a *App) draw() {
	a.screen.Clear()
	for _, f := range a.animator.Frames() {
		a.drawCard(f)
	}
	a.drawStatus()
	a.screen.Show()
}

func cardStyle(f anim.Frame) tcell.Style {
	light := 1 - math.Min(f.Shadow, 1)*0.8
	r, g, b := 230.0, 230.0, 230.0
	if f.Card.IsComplete {
		r, g, b = 150, 210, 150
	}
	bg := tcell.NewRGBColor(int32(r*light), int32(g*light), int32(b*light))
	return tcell.StyleDefault.Background(bg).Foreground(tcell.ColorBlack).Bold(true)
}

func (a *App) drawCard(f anim.Frame) {
	x0 := marginX + int(math.Round(f.X*xScale))
	y0 := marginY + int(math.Round(f.Y*yScale))
	style := cardStyle(f)

	for dy := 0; dy < cardRows; dy++ {
		for dx := 0; dx < cardCols; dx++ {
			a.setCell(x0+dx, y0+dy, ' ', style)
		}
	}

	mid := cardRows / 2
	for _, g := range f.Rank {
		if g.Opacity < 0.15 {
			continue
		}
		row := mid + int(math.Round(g.Offset*float64(mid+1)))
		if row < 0 || row >= cardRows {
			continue
		}
		gs := style
		if g.Opacity < 0.6 {
			gs = gs.Dim(true)
		}
		a.setCell(x0+cardCols/2, y0+row, rune('0'+g.Digit), gs)
	}
}

func (a *App) drawStatus() {
	snap := a.session.Snapshot()
	line := fmt.Sprintf(" %s · %d active · %d done", snap.Layout, len(snap.Cards), len(snap.Completed))
	if snap.LevelingUp {
		line += " · leveling up"
	}
	if a.status != "" {
		line += " · " + a.status
	}
	help := " n next  c complete  x now  g layout  r reset  q quit"

	a.drawText(0, a.height-2, line, tcell.StyleDefault.Foreground(tcell.ColorGray))
	a.drawText(0, a.height-1, help, tcell.StyleDefault.Foreground(tcell.ColorSteelBlue))
}

func (a *App) drawText(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		a.setCell(x, y, r, style)
		x++
	}
}

func (a *App) setCell(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= a.width || y >= a.height {
		return
	}
	a.screen.SetContent(x, y, r, nil, style)
}

// Status returns the last command error shown in the status line.
func (a *App) Status() string {
	return a.status
}
