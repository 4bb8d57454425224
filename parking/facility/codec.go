package facility

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/orderedmap"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Format is an on-disk encoding of a facility snapshot.
type Format string

const (
	FormatJSON        Format = "json"
	FormatMsgpack     Format = "msgpack"
	FormatMsgpackZstd Format = "msgpack.zst"
)

// Extension returns the file suffix for the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// FormatFromPath infers the format from a file name.
func FormatFromPath(path string) (Format, bool) {
	switch {
	case strings.HasSuffix(path, ".msgpack.zst"):
		return FormatMsgpackZstd, true
	case strings.HasSuffix(path, ".msgpack"):
		return FormatMsgpack, true
	case strings.HasSuffix(path, ".json"):
		return FormatJSON, true
	}
	return "", false
}

// floorJSON is the wire shape of a floor. Sections are an object keyed by
// section id whose key order is the registration order.
type floorJSON struct {
	Title    string          `json:"title"`
	Sections json.RawMessage `json:"sections"`
}

// MarshalJSON writes sections as an ordered object keyed by id.
func (fl Floor) MarshalJSON() ([]byte, error) {
	sections := orderedmap.New()
	sections.SetEscapeHTML(false)
	for _, section := range fl.Sections {
		sections.Set(section.ID, section)
	}

	raw, err := json.Marshal(sections)
	if err != nil {
		return nil, err
	}
	return json.Marshal(floorJSON{Title: fl.Title, Sections: raw})
}

// UnmarshalJSON reads sections preserving the key order of the document.
func (fl *Floor) UnmarshalJSON(data []byte) error {
	var wire floorJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	fl.Title = wire.Title
	fl.Sections = nil

	if len(wire.Sections) == 0 || string(wire.Sections) == "null" {
		return nil
	}

	order := orderedmap.New()
	if err := json.Unmarshal(wire.Sections, order); err != nil {
		return fmt.Errorf("sections: %w", err)
	}

	byID := make(map[string]*Section)
	if err := json.Unmarshal(wire.Sections, &byID); err != nil {
		return fmt.Errorf("sections: %w", err)
	}

	fl.Sections = make([]*Section, 0, len(byID))
	for _, id := range order.Keys() {
		section := byID[id]
		if section == nil {
			continue
		}
		section.ID = id
		fl.Sections = append(fl.Sections, section)
	}
	return nil
}

// Decode reads a facility in the given format, normalizes and validates it.
func Decode(r io.Reader, format Format) (*Facility, error) {
	var f Facility

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to parse facility: %w", err)
		}
	case FormatMsgpack:
		if err := decodeMsgpack(r, &f); err != nil {
			return nil, err
		}
	case FormatMsgpackZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		defer zr.Close()
		if err := decodeMsgpack(zr, &f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported facility format %q", format)
	}

	f.normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Encode writes a facility in the given format.
func Encode(w io.Writer, format Format, f *Facility) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(f)
	case FormatMsgpack:
		return encodeMsgpack(w, f)
	case FormatMsgpackZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return fmt.Errorf("failed to open zstd stream: %w", err)
		}
		if err := encodeMsgpack(zw, f); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	}
	return fmt.Errorf("unsupported facility format %q", format)
}

// LoadFile reads a facility snapshot, picking the codec from the extension.
func LoadFile(path string) (*Facility, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("unknown facility file type: %s", filepath.Base(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Decode(file, format)
}

// SaveFile writes a facility snapshot, picking the codec from the extension.
func SaveFile(path string, f *Facility) error {
	format, ok := FormatFromPath(path)
	if !ok {
		return fmt.Errorf("unknown facility file type: %s", filepath.Base(path))
	}

	var buf bytes.Buffer
	if err := Encode(&buf, format, f); err != nil {
		return fmt.Errorf("failed to encode facility: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write facility file: %w", err)
	}
	return nil
}

func decodeMsgpack(r io.Reader, f *Facility) error {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	if err := dec.Decode(f); err != nil {
		return fmt.Errorf("failed to parse facility: %w", err)
	}
	return nil
}

func encodeMsgpack(w io.Writer, f *Facility) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return enc.Encode(f)
}

// normalize fills derived fields that are not stored on the wire.
func (f *Facility) normalize() {
	for level, floor := range f.Floors {
		if floor == nil {
			continue
		}
		floor.Level = level
		for _, section := range floor.Sections {
			if section.Kind == "" {
				section.Kind = ParkingSection
			}
		}
	}
}
