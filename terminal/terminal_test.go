package terminal

import (
	"math/rand"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/floormap"
	"github.com/wricardo/mcp-training/parkingnav/parking/motion"
	"github.com/wricardo/mcp-training/parkingnav/parking/navigation"
	"github.com/wricardo/mcp-training/parkingnav/parking/route"
	"github.com/wricardo/mcp-training/parkingnav/parking/viewport"
)

func createTestFacility() *facility.Facility {
	stairs := func() *facility.Section {
		return &facility.Section{
			ID: "stairs", Kind: facility.MarkerSection,
			Bounds: facility.Bounds{X: 30, Y: 30, Width: 3, Height: 3},
			Stairs: []facility.Point{{X: 31, Y: 31}},
		}
	}
	return &facility.Facility{
		Name: "test",
		Floors: map[facility.Level]*facility.Floor{
			1: {Level: 1, Title: "Ground", Sections: []*facility.Section{
				{ID: "zone-a", Kind: facility.ParkingSection,
					Bounds: facility.Bounds{X: 1, Y: 1, Width: 3, Height: 10},
					Spots: []facility.Spot{
						{ID: "A1", X: 2, Y: 2},
						{ID: "A2", X: 2, Y: 3, Occupied: true},
					}},
				stairs(),
			}},
			-1: {Level: -1, Title: "Basement", Sections: []*facility.Section{
				{ID: "zone-b", Kind: facility.ParkingSection,
					Bounds: facility.Bounds{X: 1, Y: 1, Width: 3, Height: 10},
					Spots:  []facility.Spot{{ID: "B1", X: 2, Y: 2}}},
				stairs(),
			}},
		},
	}
}

func createTestApp(t *testing.T) (*App, tcell.SimulationScreen, *motion.ManualScheduler) {
	t.Helper()

	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	clock := motion.NewManualScheduler(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	nav := navigation.NewNavigator(createTestFacility(), route.NewPlanner(nil))
	start := navigation.NewSession(facility.Location{Floor: 1, Position: facility.Point{X: 20, Y: 20}})
	sim := motion.NewSimulator(nav, start, clock, motion.Config{}, nil)
	t.Cleanup(sim.Stop)

	app := New(screen, sim, Options{Clock: clock.Now, Rand: rand.New(rand.NewSource(1))})
	return app, screen, clock
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func row(screen tcell.SimulationScreen, y int) string {
	w, _ := screen.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(r)
	}
	return sb.String()
}

func screenText(screen tcell.SimulationScreen) string {
	_, h := screen.Size()
	rows := make([]string, 0, h)
	for y := 0; y < h; y++ {
		rows = append(rows, row(screen, y))
	}
	return strings.Join(rows, "\n")
}

func TestDraw(t *testing.T) {
	app, screen, clock := createTestApp(t)
	clock.Advance(viewport.AnimationDuration)
	app.Draw()

	header := row(screen, 0)
	for _, want := range []string{"test", "Floor 1", "Ground", "1/2 free", "Ready"} {
		if !strings.Contains(header, want) {
			t.Errorf("Expected header to contain %q, got %q", want, header)
		}
	}

	text := screenText(screen)
	if !strings.ContainsRune(text, floormap.Traveler) {
		t.Error("Expected traveler on screen")
	}
	if !strings.Contains(row(screen, 23), "q:quit") {
		t.Errorf("Expected key help in footer, got %q", row(screen, 23))
	}
	if !strings.Contains(row(screen, 22), "You are on floor 1") {
		t.Errorf("Expected idle status line, got %q", row(screen, 22))
	}
}

func TestHelpLine_FitsScreen(t *testing.T) {
	if n := utf8.RuneCountInString(" " + helpLine); n > 80 {
		t.Errorf("Expected help line within 80 columns, got %d", n)
	}
}

func TestHandleKey_Quit(t *testing.T) {
	app, _, _ := createTestApp(t)

	tests := []struct {
		name     string
		ev       *tcell.EventKey
		expected bool
	}{
		{"q quits", runeKey('q'), false},
		{"ctrl-c quits", key(tcell.KeyCtrlC), false},
		{"zoom keeps running", runeKey('+'), true},
		{"pan keeps running", key(tcell.KeyLeft), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := app.HandleKey(tt.ev); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestHandleKey_RouteLifecycle(t *testing.T) {
	app, screen, _ := createTestApp(t)

	app.HandleKey(key(tcell.KeyTab))
	snap := app.sim.Snapshot()
	if snap.Phase != navigation.PhaseRoutePreview {
		t.Fatalf("Expected route preview, got %s", snap.Phase)
	}
	if snap.Target == nil || snap.Target.SpotID != "A1" {
		t.Fatalf("Expected A1 selected, got %+v", snap.Target)
	}

	app.Draw()
	if footer := row(screen, 22); !strings.Contains(footer, "Enter to go") {
		t.Errorf("Expected preview in footer, got %q", footer)
	}

	app.HandleKey(key(tcell.KeyEnter))
	if phase := app.sim.Snapshot().Phase; phase != navigation.PhaseNavigatingSameFloor {
		t.Fatalf("Expected navigating, got %s", phase)
	}

	app.HandleKey(key(tcell.KeyEscape))
	if phase := app.sim.Snapshot().Phase; phase != navigation.PhaseIdle {
		t.Errorf("Expected idle after escape, got %s", phase)
	}
	if app.message != "route cancelled" {
		t.Errorf("Expected cancel message, got %q", app.message)
	}
}

func TestHandleKey_ArrivalDismissed(t *testing.T) {
	app, _, clock := createTestApp(t)

	app.HandleKey(key(tcell.KeyTab))
	app.HandleKey(key(tcell.KeyEnter))
	clock.Advance(time.Minute)

	if phase := app.sim.Snapshot().Phase; phase != navigation.PhaseArrived {
		t.Fatalf("Expected arrived, got %s", phase)
	}

	app.HandleKey(key(tcell.KeyEscape))
	if phase := app.sim.Snapshot().Phase; phase != navigation.PhaseIdle {
		t.Errorf("Expected idle after dismiss, got %s", phase)
	}
}

func TestHandleKey_Floors(t *testing.T) {
	app, _, _ := createTestApp(t)

	app.HandleKey(runeKey('b'))
	if view := app.sim.Snapshot().ViewFloor; view != -1 {
		t.Errorf("Expected view B1, got %s", view)
	}

	app.HandleKey(runeKey('9'))
	if view := app.sim.Snapshot().ViewFloor; view != -1 {
		t.Errorf("Expected view to stay on B1, got %s", view)
	}
	if app.message != "No floor 9" {
		t.Errorf("Expected missing floor message, got %q", app.message)
	}

	app.HandleKey(runeKey('1'))
	if view := app.sim.Snapshot().ViewFloor; view != 1 {
		t.Errorf("Expected view 1, got %s", view)
	}
}

func TestHandleKey_TabOnBasement(t *testing.T) {
	app, _, _ := createTestApp(t)

	app.HandleKey(runeKey('b'))
	app.HandleKey(key(tcell.KeyTab))

	snap := app.sim.Snapshot()
	if snap.Target == nil || snap.Target.SpotID != "B1" {
		t.Fatalf("Expected B1 selected, got %+v", snap.Target)
	}
	if snap.CrossFloor == nil || snap.CrossFloor.StagingPoint != (facility.Point{X: 31, Y: 31}) {
		t.Errorf("Expected cross-floor route via stairs, got %+v", snap.CrossFloor)
	}
}

func TestHandleKey_FindSpots(t *testing.T) {
	app, _, _ := createTestApp(t)

	app.HandleKey(runeKey('f'))
	if target := app.sim.Snapshot().Target; target == nil || target.SpotID != "A1" {
		t.Errorf("Expected nearest free spot A1, got %+v", target)
	}

	app.HandleKey(runeKey('c'))
	if target := app.sim.Snapshot().Target; target == nil || target.SpotID != "A2" {
		t.Fatalf("Expected car at A2, got %+v", target)
	}

	app.HandleKey(key(tcell.KeyEscape))
	app.HandleKey(runeKey('c'))
	if target := app.sim.Snapshot().Target; target == nil || target.SpotID != "A2" {
		t.Errorf("Expected the same car again, got %+v", target)
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{navigation.ErrNoRoute, "No route to that spot"},
		{navigation.ErrInvalidTransition, "Not possible right now"},
		{facility.ErrNoFreeSpot, "No free spots"},
		{facility.ErrSpotNotFound, "spot not found"},
	}

	for _, tt := range tests {
		if got := describeError(tt.err); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}

func TestStatusLine(t *testing.T) {
	snap := navigation.Snapshot{
		Phase:             navigation.PhaseNavigatingToSpot,
		Target:            &navigation.Target{Floor: -1, SpotID: "B1"},
		RemainingDistance: 12,
		Progress:          0.5,
		Hint:              route.DirectionLeft,
	}
	expected := "To B1 on floor B1: 12 m left, 50%, next left"
	if got := statusLine(snap); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}
