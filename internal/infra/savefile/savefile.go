// Package savefile reads and writes compressed ledger save files.
//
// Layout: a zstd stream holding one JSON header line followed by the JSON
// body. The body is validated against an embedded schema before decoding.
package savefile

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/starfront/starfront/internal/app/ledger"
	"github.com/starfront/starfront/internal/domain"
)

// Version is the current save format.
const Version = 1

// ErrUnsupportedVersion is returned for files written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported save file version")

//go:embed savefile.schema.json
var bodySchemaJSON string

var (
	schemaOnce sync.Once
	bodySchema *jsonschema.Schema
	schemaErr  error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		bodySchema, schemaErr = jsonschema.CompileString("savefile.schema.json", bodySchemaJSON)
	})
	return bodySchema, schemaErr
}

// Header is the first line of a save file.
type Header struct {
	Version int       `json:"version"`
	Profile string    `json:"profile"`
	SavedAt time.Time `json:"saved_at"`
}

// Body carries the persisted state. Absent fields stay absent on load.
type Body struct {
	Account         ledger.Snapshot `json:"account"`
	LevelExperience *int64          `json:"level_experience,omitempty"`
	AppliedEvents   []string        `json:"applied_events,omitempty"` // ids of events already in Account
}

// File is a decoded save file.
type File struct {
	Header Header
	Body   Body
}

// Write stores f at path atomically. A zero Version or SavedAt is filled in.
func Write(path string, f File) error {
	if f.Header.Version == 0 {
		f.Header.Version = Version
	}
	if f.Header.SavedAt.IsZero() {
		f.Header.SavedAt = time.Now().UTC()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".save-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encode(w io.Writer, f File) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)

	hb, err := json.Marshal(f.Header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	bb, err := json.Marshal(f.Body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	bw.Write(hb)
	bw.WriteByte('\n')
	bw.Write(bb)
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read loads and validates the save file at path.
func Read(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer fh.Close()
	return Decode(fh)
}

// Decode reads a save file from r.
func Decode(r io.Reader) (File, error) {
	var f File
	dec, err := zstd.NewReader(r)
	if err != nil {
		return f, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return f, fmt.Errorf("%w: missing header: %v", domain.ErrInvalidSnapshot, err)
	}
	if err := json.Unmarshal(line, &f.Header); err != nil {
		return f, fmt.Errorf("%w: header: %v", domain.ErrInvalidSnapshot, err)
	}
	if f.Header.Version > Version {
		return f, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Header.Version)
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return f, fmt.Errorf("read body: %w", err)
	}
	if err := validate(body); err != nil {
		return f, err
	}
	if err := json.Unmarshal(body, &f.Body); err != nil {
		return f, fmt.Errorf("%w: body: %v", domain.ErrInvalidSnapshot, err)
	}
	return f, nil
}

func validate(body []byte) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compile save schema: %w", err)
	}
	d := json.NewDecoder(bytes.NewReader(body))
	d.UseNumber()
	var v any
	if err := d.Decode(&v); err != nil {
		return fmt.Errorf("%w: body: %v", domain.ErrInvalidSnapshot, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	return nil
}

// ─── Ledger helpers ─────────────────────────────────────────────────────────

// Capture builds a save file from a ledger. levelXP is nil when no tracker
// is installed.
func Capture(profile string, l *ledger.Ledger, levelXP *int64) File {
	return File{
		Header: Header{Version: Version, Profile: profile},
		Body:   Body{Account: ledger.Save(l), LevelExperience: levelXP},
	}
}

// Apply restores f's account into l and returns the stored tracker
// experience, if any.
func Apply(f File, l *ledger.Ledger) (levelXP int64, ok bool) {
	ledger.Load(l, f.Body.Account)
	if f.Body.LevelExperience == nil {
		return 0, false
	}
	return *f.Body.LevelExperience, true
}
