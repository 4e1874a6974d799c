package country

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-errors"
)

// Country is a catalog entry identified by its exact, case sensitive Name.
// IsFavorite is owned by the local store and is never supplied by a Source.
type Country struct {
	Name       string `json:"name"`
	Capital    string `json:"capital"`
	Region     string `json:"region"`
	Population int64  `json:"population"`
	FlagURL    string `json:"flag_url"`
	IsFavorite bool   `json:"is_favorite"`
}

// Validate checks the record before it is written to a store.
func (c Country) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&c.Population, validation.Min(int64(0))),
	)
	if err != nil {
		return errors.FromOzzoValidation(err, "invalid country "+quote(c.Name))
	}
	return nil
}

// ReconcileStats summarizes a ReconcileAndStore call.
type ReconcileStats struct {
	Received      int
	Inserted      int
	Updated       int
	FavoritesKept int
}

// Names returns the names of the given countries in order.
func Names(countries []Country) []string {
	names := make([]string, len(countries))
	for i, c := range countries {
		names[i] = c.Name
	}
	return names
}

// Dedupe keeps the last occurrence of every name, preserving first-seen order.
func Dedupe(countries []Country) []Country {
	if len(countries) < 2 {
		return countries
	}

	index := make(map[string]int, len(countries))
	out := make([]Country, 0, len(countries))
	for _, c := range countries {
		if i, ok := index[c.Name]; ok {
			out[i] = c
			continue
		}
		index[c.Name] = len(out)
		out = append(out, c)
	}
	return out
}

func quote(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unnamed)"
	}
	return `"` + s + `"`
}
