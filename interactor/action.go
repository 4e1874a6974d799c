package interactor

// Action is a request processed by the Interactor.
type Action interface {
	ActionName() string
}

// LoadCountries lists the catalog. With Refreshing set the remote source is
// always consulted; otherwise it is only consulted when the store is empty.
type LoadCountries struct {
	Refreshing bool
}

// SearchCountries fetches matching countries from the remote source, stores
// them and returns the local matches for Query.
type SearchCountries struct {
	Query string
}

// LoadFavorites lists the favorite countries.
type LoadFavorites struct{}

// LoadCountry returns the single stored country named Name.
type LoadCountry struct {
	Name string
}

// SetFavorite marks or unmarks a stored country as favorite.
type SetFavorite struct {
	Name     string
	Favorite bool
}

func (LoadCountries) ActionName() string   { return "load_countries" }
func (SearchCountries) ActionName() string { return "search_countries" }
func (LoadFavorites) ActionName() string   { return "load_favorites" }
func (LoadCountry) ActionName() string     { return "load_country" }
func (SetFavorite) ActionName() string     { return "set_favorite" }
