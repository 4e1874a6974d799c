// Package snapshot reads and writes portable copies of the catalog,
// favorite flags included, as msgpack documents.
package snapshot

import (
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-country-cache/country"
)

// Version is the snapshot format written by Write.
const Version = 1

// Snapshot is the document stored by Write.
type Snapshot struct {
	Version   int               `json:"version"`
	TakenAt   time.Time         `json:"taken_at"`
	Countries []country.Country `json:"countries"`
}

// Write encodes countries as a snapshot taken now.
func Write(w io.Writer, countries []country.Country) error {
	return Encode(w, Snapshot{
		Version:   Version,
		TakenAt:   time.Now().UTC(),
		Countries: countries,
	})
}

// Encode writes s as msgpack, using the json field names.
func Encode(w io.Writer, s Snapshot) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Read decodes a snapshot and validates every record in it.
func Read(r io.Reader) (Snapshot, error) {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")

	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, country.DecodeError(err, "snapshot: malformed document")
	}
	if s.Version != Version {
		return Snapshot{}, country.DecodeError(nil, fmt.Sprintf("snapshot: unsupported version %d", s.Version))
	}

	for _, c := range s.Countries {
		if err := c.Validate(); err != nil {
			return Snapshot{}, err
		}
	}
	if s.Countries == nil {
		s.Countries = []country.Country{}
	}
	return s, nil
}
