package country

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-errors"
)

func TestCountry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		country Country
		wantErr bool
		field   string
	}{
		{
			name:    "valid",
			country: Country{Name: "Slovakia", Capital: "Bratislava", Population: 5450000},
		},
		{
			name:    "zero population is allowed",
			country: Country{Name: "Bouvet Island"},
		},
		{
			name:    "missing name",
			country: Country{Capital: "Nowhere"},
			wantErr: true,
			field:   "name",
		},
		{
			name:    "negative population",
			country: Country{Name: "Japan", Population: -1},
			wantErr: true,
			field:   "population",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.country.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected validation error")
			}
			if !IsValidation(err) {
				t.Fatalf("expected validation category, got %v", err)
			}

			fields, ok := errors.GetValidationErrors(err)
			if !ok {
				t.Fatalf("expected field errors in %v", err)
			}
			found := false
			for _, f := range fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got %v", tt.field, fields)
			}
		})
	}
}

func TestDedupe_LastWins(t *testing.T) {
	in := []Country{
		{Name: "Japan", Population: 1},
		{Name: "Slovakia", Population: 2},
		{Name: "Japan", Population: 3},
	}

	got := Dedupe(in)
	want := []Country{
		{Name: "Japan", Population: 3},
		{Name: "Slovakia", Population: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDedupe_IsCaseSensitive(t *testing.T) {
	got := Dedupe([]Country{{Name: "japan"}, {Name: "Japan"}})
	if len(got) != 2 {
		t.Errorf("expected names differing in case to stay distinct, got %v", got)
	}
}

func TestNames(t *testing.T) {
	got := Names([]Country{{Name: "Slovakia"}, {Name: "Slovenia"}})
	if !reflect.DeepEqual(got, []string{"Slovakia", "Slovenia"}) {
		t.Errorf("unexpected names %v", got)
	}
}

func TestErrorKinds(t *testing.T) {
	cause := stderrors.New("connection refused")

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"storage", StorageUnavailable(cause, "get"), IsStorageUnavailable},
		{"network", NetworkError(cause, "fetch all"), IsNetworkError},
		{"network without cause", NetworkError(nil, "status 500"), IsNetworkError},
		{"decode", DecodeError(cause, "bad payload"), IsDecodeError},
		{"not found", NotFound("Atlantis"), IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("expected %v to match its kind", tt.err)
			}
		})
	}

	if IsNotFound(StorageUnavailable(cause, "get")) {
		t.Error("storage error must not be reported as not found")
	}
}

func TestStorageUnavailable_KeepsCause(t *testing.T) {
	err := StorageUnavailable(context.Canceled, "list")
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped error to unwrap to context.Canceled, got %v", err)
	}

	if StorageUnavailable(nil, "list") != nil {
		t.Error("expected nil for nil cause")
	}
}
