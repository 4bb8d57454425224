package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/parkingnav/parking/facility"
	"github.com/wricardo/mcp-training/parkingnav/parking/service"
)

// DefaultFacilityName is loaded as the default when present.
const DefaultFacilityName = "forum-istanbul"

var (
	ErrFacilityNotFound = service.ErrFacilityNotFound
	ErrInvalidFacility  = facility.ErrInvalidFacility
)

// formats lists the supported encodings in lookup order.
var formats = []facility.Format{facility.FormatJSON, facility.FormatMsgpack, facility.FormatMsgpackZstd}

type cachedFacility struct {
	facility *facility.Facility
	format   facility.Format
	filename string
	raw      []byte
}

// Manager handles facility snapshot loading and caching
type Manager struct {
	dir             string
	defaultName     string
	defaultFacility *facility.Facility
	facilities      map[string]*cachedFacility
	mu              sync.RWMutex
}

// NewManager creates a new facility manager over a directory of snapshots
func NewManager(dir string) (*Manager, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("facility directory does not exist: %s", dir)
	}

	m := &Manager{
		dir:        dir,
		facilities: make(map[string]*cachedFacility),
	}
	m.loadDefaultFacility()

	return m, nil
}

// splitName strips a known format extension from name.
func splitName(name string) (string, facility.Format, bool) {
	format, ok := facility.FormatFromPath(name)
	if !ok {
		return name, "", false
	}
	return strings.TrimSuffix(name, format.Extension()), format, true
}

// resolve finds the file holding the named facility.
func (m *Manager) resolve(name string) (string, facility.Format, error) {
	base, format, explicit := splitName(name)
	candidates := formats
	if explicit {
		candidates = []facility.Format{format}
	}

	for _, format := range candidates {
		filename := base + format.Extension()
		if _, err := os.Stat(filepath.Join(m.dir, filename)); err == nil {
			return filename, format, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrFacilityNotFound, name)
}

// read loads and decodes a facility file without touching the cache.
func (m *Manager) read(name string) (*cachedFacility, error) {
	filename, format, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFacilityNotFound, name)
		}
		return nil, fmt.Errorf("failed to read facility file: %w", err)
	}

	f, err := facility.Decode(bytes.NewReader(raw), format)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility %s: %w", filename, err)
	}

	return &cachedFacility{facility: f, format: format, filename: filename, raw: raw}, nil
}

// Load loads a facility by name. The name may carry a format extension;
// without one the first existing format wins.
func (m *Manager) Load(name string) (*facility.Facility, error) {
	key, format, explicit := splitName(name)

	m.mu.RLock()
	// Check cache first
	if f, ok := m.cachedLocked(key, format, explicit); ok {
		m.mu.RUnlock()
		return f, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if f, ok := m.cachedLocked(key, format, explicit); ok {
		return f, nil
	}

	cached, err := m.read(name)
	if err != nil {
		return nil, err
	}
	m.facilities[key] = cached
	return cached.facility, nil
}

// cachedLocked returns a cached snapshot. A name with an explicit extension
// only matches a snapshot read from that format.
func (m *Manager) cachedLocked(key string, format facility.Format, explicit bool) (*facility.Facility, bool) {
	cached, exists := m.facilities[key]
	if !exists || (explicit && cached.format != format) {
		return nil, false
	}
	return cached.facility, true
}

// List returns information about all loadable facilities. Invalid files are
// skipped.
func (m *Manager) List() ([]*service.FacilityInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read facility directory: %w", err)
	}

	seen := make(map[string]bool)
	var result []*service.FacilityInfo

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, format, ok := splitName(entry.Name())
		if !ok || seen[name] {
			continue
		}

		f, err := m.Load(name)
		if err != nil {
			continue
		}
		seen[name] = true

		result = append(result, facilityInfo(entry.Name(), name, format, f))
	}

	sort.Slice(result, func(i, j int) bool { return result[i].FacilityID < result[j].FacilityID })
	return result, nil
}

func facilityInfo(filename, id string, format facility.Format, f *facility.Facility) *service.FacilityInfo {
	info := &service.FacilityInfo{
		Filename:   filename,
		FacilityID: id,
		Format:     format,
		Name:       f.Info.Name,
		Address:    f.Info.Address,
		OpenHours:  f.Info.OpenHours,
		Floors:     f.Stats(),
	}
	if info.Name == "" {
		info.Name = f.Name
	}
	for _, stats := range info.Floors {
		info.TotalSpots += stats.Capacity
		info.AvailableSpots += stats.Capacity - stats.Occupied
	}
	return info
}

// Default returns the default facility
func (m *Manager) Default() *facility.Facility {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultFacility
}

// DefaultName returns the identifier of the default facility
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName
}

// SetDefault sets the default facility by name
func (m *Manager) SetDefault(name string) error {
	f, err := m.Load(name)
	if err != nil {
		return err
	}

	key, _, _ := splitName(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = key
	m.defaultFacility = f
	return nil
}

// Refresh rereads a facility from disk and reports whether its contents
// changed. An unchanged file keeps the cached snapshot. A file that no
// longer decodes leaves the cache untouched and returns the error.
func (m *Manager) Refresh(name string) (*facility.Facility, bool, error) {
	key, _, _ := splitName(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	fresh, err := m.read(name)
	if err != nil {
		if key == m.defaultName && m.defaultFacility != nil && errors.Is(err, ErrFacilityNotFound) {
			// The built-in fallback has no file behind it.
			if _, cached := m.facilities[key]; !cached {
				return m.defaultFacility, false, nil
			}
		}
		return nil, false, err
	}

	cached, exists := m.facilities[key]
	if exists && bytes.Equal(cached.raw, fresh.raw) {
		return cached.facility, false, nil
	}

	m.facilities[key] = fresh
	if key == m.defaultName {
		m.defaultFacility = fresh.facility
	}
	return fresh.facility, exists, nil
}

// Save writes a facility to disk in the given format and caches it
func (m *Manager) Save(name string, format facility.Format, f *facility.Facility) error {
	if err := f.Validate(); err != nil {
		return err
	}

	key, _, _ := splitName(name)
	filename := key + format.Extension()

	var buf bytes.Buffer
	if err := facility.Encode(&buf, format, f); err != nil {
		return fmt.Errorf("failed to encode facility: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.dir, filename), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write facility file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.facilities[key] = &cachedFacility{facility: f, format: format, filename: filename, raw: buf.Bytes()}
	if key == m.defaultName {
		m.defaultFacility = f
	}
	return nil
}

// loadDefaultFacility picks the default: the well-known facility, else the
// first listed one, else a minimal built-in floor.
func (m *Manager) loadDefaultFacility() {
	if f, err := m.Load(DefaultFacilityName); err == nil {
		m.defaultName, m.defaultFacility = DefaultFacilityName, f
		return
	}

	if infos, err := m.List(); err == nil && len(infos) > 0 {
		if f, err := m.Load(infos[0].FacilityID); err == nil {
			m.defaultName, m.defaultFacility = infos[0].FacilityID, f
			return
		}
	}

	f := createMinimalFacility()
	m.defaultName, m.defaultFacility = f.Name, f
}

// createMinimalFacility creates a single-floor facility with one parking
// zone and a stairwell.
func createMinimalFacility() *facility.Facility {
	spots := make([]facility.Spot, 0, 8)
	for i := 0; i < 8; i++ {
		spots = append(spots, facility.Spot{ID: fmt.Sprintf("A%d", i+1), X: 11 + 2*i, Y: 11})
	}

	return &facility.Facility{
		Name: "default",
		Info: facility.Info{Name: "Default Garage", TotalSpots: len(spots), AvailableSpots: len(spots)},
		Entry: &facility.Location{
			Floor:    1,
			Position: facility.Point{X: 0, Y: 20},
		},
		Floors: map[facility.Level]*facility.Floor{
			1: {
				Level: 1,
				Title: "1. Kat",
				Sections: []*facility.Section{
					{ID: "zone-a", Title: "A Bölgesi", Kind: facility.ParkingSection,
						Bounds: facility.Bounds{X: 10, Y: 10, Width: 18, Height: 3}, Spots: spots},
					{ID: "stairs", Title: "Merdiven", Kind: facility.MarkerSection,
						Bounds: facility.Bounds{X: 34, Y: 34, Width: 3, Height: 3},
						Stairs: []facility.Point{{X: 35, Y: 35}}},
				},
			},
		},
	}
}
