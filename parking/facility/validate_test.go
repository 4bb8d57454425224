package facility

import (
	"errors"
	"strings"
	"testing"
)

func TestFacility_Validate(t *testing.T) {
	if err := createTestFacility().Validate(); err != nil {
		t.Fatalf("Expected test facility to be valid, got %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(f *Facility)
		wantMsg string
	}{
		{
			name:    "missing name",
			mutate:  func(f *Facility) { f.Name = "" },
			wantMsg: "name is required",
		},
		{
			name:    "no floors",
			mutate:  func(f *Facility) { f.Floors = nil },
			wantMsg: "at least one floor",
		},
		{
			name: "section off grid",
			mutate: func(f *Facility) {
				f.Floors[1].Sections[0].Bounds = Bounds{X: 38, Y: 0, Width: 3, Height: 2}
			},
			wantMsg: "exceed",
		},
		{
			name: "overlapping sections",
			mutate: func(f *Facility) {
				f.Floors[1].Sections[1].Bounds = Bounds{X: 3, Y: 1, Width: 3, Height: 10}
			},
			wantMsg: "overlap",
		},
		{
			name: "spot outside section",
			mutate: func(f *Facility) {
				f.Floors[1].Sections[0].Spots[0].X = 4
			},
			wantMsg: "outside section",
		},
		{
			name: "duplicate spot id",
			mutate: func(f *Facility) {
				f.Floors[1].Sections[1].Spots[0].ID = "A1"
			},
			wantMsg: "duplicate spot id",
		},
		{
			name: "shared spot cell",
			mutate: func(f *Facility) {
				f.Floors[1].Sections[0].Spots[1].Y = 2
			},
			wantMsg: "share cell",
		},
		{
			name: "marker with spots",
			mutate: func(f *Facility) {
				s := f.Floors[1].Sections[2]
				s.Spots = []Spot{{ID: "X1", X: 31, Y: 30}}
			},
			wantMsg: "cannot hold spots",
		},
		{
			name: "stairs outside section",
			mutate: func(f *Facility) {
				f.Floors[2].Sections[1].Stairs = []Point{{X: 0, Y: 0}}
			},
			wantMsg: "stairs",
		},
		{
			name: "entry on unknown floor",
			mutate: func(f *Facility) {
				f.Entry = &Location{Floor: 9}
			},
			wantMsg: "entry floor",
		},
		{
			name: "unknown kind",
			mutate: func(f *Facility) {
				f.Floors[2].Sections[0].Kind = "garden"
			},
			wantMsg: "unknown kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTestFacility()
			tt.mutate(f)

			err := f.Validate()
			if !errors.Is(err, ErrInvalidFacility) {
				t.Fatalf("Expected ErrInvalidFacility, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestFacility_ValidateSpotIDsScopedPerFloor(t *testing.T) {
	f := createTestFacility()
	f.Floors[2].Sections[0].Spots[0].ID = "A1"

	if err := f.Validate(); err != nil {
		t.Errorf("Spot ids only need to be unique within a floor, got %v", err)
	}
}
