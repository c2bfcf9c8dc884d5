package draft

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNotFound is returned when a record reference resolves to nothing.
var ErrNotFound = errors.New("speech not found")

// DemoIDPrefix marks catalog entries that are never persisted.
const DemoIDPrefix = "demo-speech-"

// Record identifies the speech being edited. A record is either backed by
// the store (persisted) or by the demo catalog, and the distinction is
// resolved exactly once, here, so nothing downstream re-parses id strings.
type Record struct {
	demoID      string
	persistedID uint
}

// PersistedRecord references a store-backed speech.
func PersistedRecord(id uint) Record {
	return Record{persistedID: id}
}

// DemoRecord references a demo catalog entry.
func DemoRecord(id string) Record {
	return Record{demoID: id}
}

// ResolveRecord classifies a raw id from a URL. The literal token "demo"
// selects the first catalog entry.
func ResolveRecord(raw string) (Record, error) {
	if raw == "demo" {
		return DemoRecord(DemoIDPrefix + "001"), nil
	}
	if strings.HasPrefix(raw, DemoIDPrefix) {
		return DemoRecord(raw), nil
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return Record{}, ErrNotFound
	}
	return PersistedRecord(uint(id)), nil
}

// IsDemo reports whether the record is a read-only demo entry.
func (r Record) IsDemo() bool {
	return r.demoID != ""
}

// DemoID returns the catalog id, empty for persisted records.
func (r Record) DemoID() string {
	return r.demoID
}

// PersistedID returns the store id, zero for demo records.
func (r Record) PersistedID() uint {
	return r.persistedID
}
