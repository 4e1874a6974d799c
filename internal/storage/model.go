package storage

import (
	"github.com/uptrace/bun"

	"github.com/goliatone/go-country-cache/country"
)

type countryRow struct {
	bun.BaseModel `bun:"table:countries"`

	Name       string `bun:"name,pk"`
	NameFolded string `bun:"name_folded,notnull"`
	Capital    string `bun:"capital,notnull"`
	Region     string `bun:"region,notnull"`
	Population int64  `bun:"population,notnull"`
	FlagURL    string `bun:"flag_url,notnull"`
	IsFavorite bool   `bun:"is_favorite,notnull"`
}

func toRow(c country.Country) countryRow {
	return countryRow{
		Name:       c.Name,
		NameFolded: foldName(c.Name),
		Capital:    c.Capital,
		Region:     c.Region,
		Population: c.Population,
		FlagURL:    c.FlagURL,
		IsFavorite: c.IsFavorite,
	}
}

func (r countryRow) toCountry() country.Country {
	return country.Country{
		Name:       r.Name,
		Capital:    r.Capital,
		Region:     r.Region,
		Population: r.Population,
		FlagURL:    r.FlagURL,
		IsFavorite: r.IsFavorite,
	}
}

func toCountries(rows []countryRow) []country.Country {
	out := make([]country.Country, len(rows))
	for i, r := range rows {
		out[i] = r.toCountry()
	}
	return out
}
