package snapshot

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-country-cache/country"
	"github.com/goliatone/go-country-cache/pkg/testsupport"
)

func TestWriteRead(t *testing.T) {
	countries := testsupport.SampleCountries()
	countries[3].IsFavorite = true

	var buf bytes.Buffer
	before := time.Now().Add(-time.Second)
	if err := Write(&buf, countries); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	s, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if s.Version != Version {
		t.Errorf("expected version %d, got %d", Version, s.Version)
	}
	if s.TakenAt.Before(before) {
		t.Errorf("unexpected timestamp %v", s.TakenAt)
	}
	if !reflect.DeepEqual(s.Countries, countries) {
		t.Errorf("countries changed in transit:\n got %+v\nwant %+v", s.Countries, countries)
	}
	if !s.Countries[3].IsFavorite {
		t.Error("favorite flag was lost")
	}
}

func TestEncode_UsesJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, Snapshot{
		Version:   Version,
		TakenAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Countries: []country.Country{{Name: "Japan", FlagURL: "f", IsFavorite: true}},
	})
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := msgpack.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"version", "taken_at", "countries"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected key %q in %v", key, raw)
		}
	}

	records, ok := raw["countries"].([]any)
	if !ok || len(records) != 1 {
		t.Fatalf("unexpected countries value %#v", raw["countries"])
	}
	record, ok := records[0].(map[string]any)
	if !ok {
		t.Fatalf("unexpected record %#v", records[0])
	}
	if record["flag_url"] != "f" || record["is_favorite"] != true {
		t.Errorf("unexpected record fields %v", record)
	}
}

func TestRead_Errors(t *testing.T) {
	encode := func(s Snapshot) []byte {
		var buf bytes.Buffer
		if err := Encode(&buf, s); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}

	tests := []struct {
		name       string
		data       []byte
		validation bool
	}{
		{name: "garbage", data: []byte{0xc1, 0x00}},
		{name: "empty", data: nil},
		{name: "future version", data: encode(Snapshot{Version: 99})},
		{name: "invalid record", data: encode(Snapshot{Version: Version, Countries: []country.Country{{Name: ""}}}), validation: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.validation {
				if !country.IsValidation(err) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if !country.IsDecodeError(err) {
				t.Errorf("expected decode error, got %v", err)
			}
		})
	}
}

func TestRead_EmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatal(err)
	}

	s, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if s.Countries == nil || len(s.Countries) != 0 {
		t.Errorf("expected empty catalog, got %#v", s.Countries)
	}
}
