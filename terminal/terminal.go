// Package terminal is an interactive tcell front end for a single
// navigation session. It draws the viewed floor through the viewport camera
// and drives the session's simulator from the keyboard.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/mcp-training/parkingnav/logging"
	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/floormap"
	"github.com/wricardo/mcp-training/parkingnav/parking/motion"
	"github.com/wricardo/mcp-training/parkingnav/parking/navigation"
	"github.com/wricardo/mcp-training/parkingnav/parking/viewport"
)

const (
	// RedrawInterval paces redraws while the camera or traveler moves.
	RedrawInterval = 40 * time.Millisecond

	headerRows = 1
	footerRows = 2
	panStep    = 4.0
	zoomStep   = 1.25
)

var (
	styleDefault  = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleHeader   = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleWall     = styleDefault.Foreground(tcell.ColorDarkGray)
	styleAisle    = styleDefault.Foreground(tcell.ColorGray)
	styleFree     = styleDefault.Foreground(tcell.ColorLime)
	styleOccupied = styleDefault.Foreground(tcell.ColorRed)
	styleStairs   = styleDefault.Foreground(tcell.ColorYellow).Bold(true)
	stylePath     = styleDefault.Foreground(tcell.ColorSkyblue)
	styleTarget   = styleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLime).Bold(true)
	styleTraveler = styleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleStatus   = styleDefault.Foreground(tcell.ColorWhite)
	styleMessage  = styleDefault.Foreground(tcell.ColorOrange)
	styleHelp     = styleDefault.Foreground(tcell.ColorGray)
)

// helpLine fits an 80 column terminal with the leading margin.
const helpLine = "arrows:pan +/-:zoom 1-9,b:floor tab:spot enter:go esc:back f:free c:car q:quit"

// redraw asks the event loop to repaint.
type redraw struct{}

// App is the terminal front end.
type App struct {
	ctx      context.Context
	screen   tcell.Screen
	sim      *motion.Simulator
	facility *facility.Facility
	view     *viewport.Controller
	clock    func() time.Time
	rng      *rand.Rand
	logger   *logging.Logger

	spotCursor int
	car        *facility.SpotLocation
	message    string
}

// Options configures an App. Zero values use the real clock and a
// time-seeded random source.
type Options struct {
	Clock  func() time.Time
	Rand   *rand.Rand
	Logger *logging.Logger
}

// New creates an app over an initialized screen.
func New(screen tcell.Screen, sim *motion.Simulator, opts Options) *App {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	a := &App{
		ctx:      context.Background(),
		screen:   screen,
		sim:      sim,
		facility: sim.Navigator().Facility(),
		view:     viewport.NewController(viewport.Screen{}),
		clock:    opts.Clock,
		rng:      opts.Rand,
		logger:   opts.Logger,
	}
	a.resize()

	// Frames arrive under the simulator lock; hand them to the event loop.
	sim.OnFrame(func(f motion.Frame) {
		screen.PostEvent(tcell.NewEventInterrupt(f))
	})

	now := a.clock()
	a.view.RecenterOn(sim.Snapshot().Traveler.Position, now)
	return a
}

// Run processes input and simulator frames until the user quits or ctx is
// cancelled. The caller owns screen Init and Fini.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	defer a.sim.OnFrame(nil)

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(RedrawInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.screen.PostEvent(tcell.NewEventInterrupt(redraw{}))
			case <-ctx.Done():
				a.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
				return
			case <-done:
				return
			}
		}
	}()

	a.Draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.resize()
			a.screen.Sync()
		case *tcell.EventKey:
			if !a.HandleKey(ev) {
				return nil
			}
		case *tcell.EventInterrupt:
			switch data := ev.Data().(type) {
			case motion.Frame:
				a.Observe(data)
			case error:
				return data
			}
		}
		a.Draw()
	}
}

func (a *App) resize() {
	w, h := a.screen.Size()
	a.view.Resize(viewport.Screen{
		Width:  w,
		Height: max(h-headerRows-footerRows, 1),
		UnitX:  2,
		UnitY:  1,
	})
}

// Observe feeds a simulator frame to the camera and the status line.
func (a *App) Observe(f motion.Frame) {
	a.view.Observe(f.Snapshot, a.clock())
	for _, ev := range f.Events {
		switch ev.Type {
		case navigation.EventArrived, navigation.EventRouteFailed, navigation.EventCancelled, navigation.EventFloorChanged:
			if ev.Message != "" {
				a.message = ev.Message
			}
		}
	}
	if f.Error != "" {
		a.message = f.Error
	}
}

// HandleKey applies a key press. It returns false when the user quits.
func (a *App) HandleKey(ev *tcell.EventKey) bool {
	now := a.clock()

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		a.pan(0, -panStep, now)
	case tcell.KeyDown:
		a.pan(0, panStep, now)
	case tcell.KeyLeft:
		a.pan(-panStep, 0, now)
	case tcell.KeyRight:
		a.pan(panStep, 0, now)
	case tcell.KeyTab:
		a.cycleSpot()
	case tcell.KeyEnter:
		a.dispatch(navigation.ConfirmRoute{})
	case tcell.KeyEscape:
		if a.sim.Snapshot().Phase == navigation.PhaseArrived {
			a.dispatch(navigation.DismissArrival{})
		} else {
			a.dispatch(navigation.CancelRoute{})
		}
	case tcell.KeyRune:
		return a.handleRune(ev.Rune(), now)
	}
	return true
}

func (a *App) handleRune(r rune, now time.Time) bool {
	switch {
	case r == 'q' || r == 'Q':
		return false
	case r == '+' || r == '=':
		a.view.Zoom(zoomStep, now)
	case r == '-':
		a.view.Zoom(1/zoomStep, now)
	case r >= '0' && r <= '9':
		a.selectFloor(facility.Level(r - '0'))
	case r == 'b' || r == 'B':
		a.selectFloor(a.nextBasement())
	case r == 'f':
		a.findFreeSpot()
	case r == 'c':
		a.findCar()
	}
	return true
}

func (a *App) pan(dx, dy float64, now time.Time) {
	scale := a.view.Camera(now).Scale
	a.view.Pan(dx/scale, dy/scale, now)
}

// dispatch sends a command and reports failures in the status line.
func (a *App) dispatch(cmd navigation.Command) bool {
	a.message = ""
	_, events, err := a.sim.Dispatch(a.ctx, cmd)
	a.Observe(motion.Frame{Snapshot: a.sim.Snapshot(), Events: events})
	if err != nil {
		a.message = describeError(err)
		a.logger.Debug("command failed", "command", cmd.Name(), "error", err)
		return false
	}
	return true
}

func describeError(err error) string {
	switch {
	case errors.Is(err, navigation.ErrNoRoute):
		return "No route to that spot"
	case errors.Is(err, navigation.ErrNoStairs):
		return "No stairs to change floors"
	case errors.Is(err, navigation.ErrInvalidTransition):
		return "Not possible right now"
	case errors.Is(err, facility.ErrNoFreeSpot):
		return "No free spots"
	case errors.Is(err, facility.ErrNoOccupiedSpot):
		return "No parked cars found"
	}
	return err.Error()
}

func (a *App) selectFloor(level facility.Level) {
	if _, err := a.facility.Floor(level); err != nil {
		a.message = fmt.Sprintf("No floor %s", level)
		return
	}
	a.spotCursor = 0
	a.dispatch(navigation.SelectFloor{Floor: level})
}

// nextBasement walks down through basement levels, wrapping to the highest.
func (a *App) nextBasement() facility.Level {
	view := a.sim.Snapshot().ViewFloor
	var basements []facility.Level
	for _, level := range a.facility.Levels() {
		if level.IsBasement() {
			basements = append(basements, level)
		}
	}
	if len(basements) == 0 {
		return view
	}
	// Levels are ascending, so the deepest basement comes first.
	for i := len(basements) - 1; i >= 0; i-- {
		if basements[i] < view {
			return basements[i]
		}
	}
	return basements[len(basements)-1]
}

// freeSpots lists free spots on the viewed floor in section order.
func (a *App) freeSpots(level facility.Level) []facility.Spot {
	floor, err := a.facility.Floor(level)
	if err != nil {
		return nil
	}
	var spots []facility.Spot
	for _, section := range floor.Sections {
		for _, spot := range section.Spots {
			if !spot.Occupied {
				spots = append(spots, spot)
			}
		}
	}
	return spots
}

func (a *App) cycleSpot() {
	level := a.sim.Snapshot().ViewFloor
	spots := a.freeSpots(level)
	if len(spots) == 0 {
		a.message = fmt.Sprintf("No free spots on floor %s", level)
		return
	}
	spot := spots[a.spotCursor%len(spots)]
	a.spotCursor++
	a.selectSpot(level, spot.ID)
}

// selectSpot replaces whatever route is in progress with one to spotID.
func (a *App) selectSpot(level facility.Level, spotID string) {
	a.dispatch(navigation.SelectSpot{Floor: level, SpotID: spotID})
}

func (a *App) findFreeSpot() {
	spot, err := a.facility.FindNearestFreeSpot(a.sim.Snapshot().Traveler)
	if err != nil {
		a.message = describeError(err)
		return
	}
	a.selectSpot(spot.Floor, spot.Spot.ID)
}

// findCar picks the traveler's parked car once, preferring their own floor.
func (a *App) findCar() {
	if a.car == nil {
		here := a.sim.Snapshot().Traveler.Floor
		levels := append([]facility.Level{here}, a.facility.Levels()...)
		for _, level := range levels {
			spot, err := a.facility.PickRandomOccupiedSpot(level, a.rng)
			if err == nil {
				a.car = &spot
				break
			}
		}
	}
	if a.car == nil {
		a.message = describeError(facility.ErrNoOccupiedSpot)
		return
	}
	a.selectSpot(a.car.Floor, a.car.Spot.ID)
}

// Draw paints the whole screen.
func (a *App) Draw() {
	now := a.clock()
	snap := a.sim.Snapshot()
	w, h := a.screen.Size()

	a.screen.SetStyle(styleDefault)
	a.screen.Clear()

	a.drawMap(snap, now)
	a.drawHeader(snap, w)
	a.drawFooter(snap, w, h)
	a.screen.Show()
}

func (a *App) drawMap(snap navigation.Snapshot, now time.Time) {
	floor, err := a.facility.Floor(snap.ViewFloor)
	if err != nil {
		return
	}

	var ov floormap.Overlay
	if t := snap.Target; t != nil && t.Floor == snap.ViewFloor {
		p := t.Point
		ov.Target = &p
	}
	switch {
	case len(snap.PendingPath) > 0:
		ov.Path = snap.PendingPath
	case snap.Cursor < len(snap.ActivePath):
		ov.Path = snap.ActivePath[snap.Cursor:]
	}
	grid := floormap.Build(floor, ov)

	screen := a.view.Screen()
	cam := a.view.Camera(now)
	for sy := 0; sy < screen.Height; sy++ {
		for sx := 0; sx < screen.Width; sx++ {
			r := grid.At(cam.ScreenToWorld(screen, sx, sy))
			if r == 0 {
				continue
			}
			a.screen.SetContent(sx, sy+headerRows, r, nil, cellStyle(r))
		}
	}

	if snap.Traveler.Floor == snap.ViewFloor {
		pos := a.sim.Position(now)
		fx, fy := cam.WorldToScreen(screen, pos.X+0.5, pos.Y+0.5)
		sx, sy := int(math.Floor(fx)), int(math.Floor(fy))
		if sx >= 0 && sx < screen.Width && sy >= 0 && sy < screen.Height {
			a.screen.SetContent(sx, sy+headerRows, floormap.Traveler, nil, styleTraveler)
		}
	}
}

func cellStyle(r rune) tcell.Style {
	switch r {
	case floormap.Wall:
		return styleWall
	case floormap.Free:
		return styleFree
	case floormap.Occupied:
		return styleOccupied
	case floormap.Stairs:
		return styleStairs
	case floormap.Path:
		return stylePath
	case floormap.Target:
		return styleTarget
	}
	return styleAisle
}

func (a *App) drawHeader(snap navigation.Snapshot, w int) {
	name := a.facility.Info.Name
	if name == "" {
		name = a.facility.Name
	}
	title := fmt.Sprintf(" %s | Floor %s", name, snap.ViewFloor)
	if floor, err := a.facility.Floor(snap.ViewFloor); err == nil {
		stats := floor.Stats()
		title += fmt.Sprintf(" %s | %d/%d free", floor.Title, stats.Capacity-stats.Occupied, stats.Capacity)
	}
	title += " | " + snap.Status
	fill(a.screen, 0, w, styleHeader)
	drawText(a.screen, 0, 0, w, title, styleHeader)
}

func (a *App) drawFooter(snap navigation.Snapshot, w, h int) {
	if h < headerRows+footerRows {
		return
	}
	drawText(a.screen, 0, h-2, w, " "+statusLine(snap), styleStatus)
	if a.message != "" {
		drawText(a.screen, 0, h-1, w, " "+a.message, styleMessage)
	} else {
		drawText(a.screen, 0, h-1, w, " "+helpLine, styleHelp)
	}
}

// statusLine summarizes the route for the footer.
func statusLine(snap navigation.Snapshot) string {
	var target string
	if t := snap.Target; t != nil {
		target = fmt.Sprintf("%s on floor %s", t.SpotID, t.Floor)
	}

	switch {
	case snap.Preview != nil:
		line := fmt.Sprintf("To %s: %d m, %d s. Enter to go.", target, snap.Preview.Distance, snap.Preview.Time)
		if snap.Preview.CrossFloor {
			line += " Changes floor."
		}
		return line
	case snap.Phase == navigation.PhaseChangingFloor && snap.CrossFloor != nil:
		return fmt.Sprintf("Taking the stairs to floor %s", snap.CrossFloor.TargetFloor)
	case snap.Phase.IsNavigating():
		line := fmt.Sprintf("To %s: %d m left, %.0f%%", target, snap.RemainingDistance, snap.Progress*100)
		if snap.Hint != "" {
			line += fmt.Sprintf(", next %s", snap.Hint)
		}
		return line
	case snap.Phase == navigation.PhaseArrived:
		return fmt.Sprintf("Arrived at %s. Esc to continue.", target)
	}
	return fmt.Sprintf("You are on floor %s at (%d,%d). Tab picks a spot.",
		snap.Traveler.Floor, snap.Traveler.Position.X, snap.Traveler.Position.Y)
}

func fill(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func drawText(s tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	i := 0
	for _, r := range text {
		if x+i >= maxWidth {
			return
		}
		s.SetContent(x+i, y, r, nil, style)
		i++
	}
}
