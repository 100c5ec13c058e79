package models

// CategoryKey identifies one of the eight catalog segments.
type CategoryKey string

const (
	NetflixOriginals CategoryKey = "netflix_originals"
	TrendingNow      CategoryKey = "trending_now"
	TopRated         CategoryKey = "top_rated"
	ActionMovies     CategoryKey = "action_movies"
	ComedyMovies     CategoryKey = "comedy_movies"
	HorrorMovies     CategoryKey = "horror_movies"
	RomanceMovies    CategoryKey = "romance_movies"
	Documentaries    CategoryKey = "documentaries"
)

// Category describes a fixed catalog segment and the TMDB request that fills it.
type Category struct {
	Key   CategoryKey
	Title string
	Path  string // TMDB path and filter query; credentials and language are added by the client
}

// Categories lists the eight segments in fetch order.
var Categories = []Category{
	{Key: NetflixOriginals, Title: "Netflix Originals", Path: "/discover/tv?with_networks=213"},
	{Key: TrendingNow, Title: "Trending Now", Path: "/trending/all/week"},
	{Key: TopRated, Title: "Top Rated", Path: "/movie/top_rated"},
	{Key: ActionMovies, Title: "Action Thrillers", Path: "/discover/movie?with_genres=28"},
	{Key: ComedyMovies, Title: "Comedies", Path: "/discover/movie?with_genres=35"},
	{Key: HorrorMovies, Title: "Scary Movies", Path: "/discover/movie?with_genres=27"},
	{Key: RomanceMovies, Title: "Romance Movies", Path: "/discover/movie?with_genres=10749"},
	{Key: Documentaries, Title: "Documentaries", Path: "/discover/movie?with_genres=99"},
}

// LookupCategory returns the category with the given key.
func LookupCategory(key CategoryKey) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// CatalogPage holds the eight result sets of one home page render.
type CatalogPage struct {
	NetflixOriginals []Movie `json:"netflixOriginals"`
	TrendingNow      []Movie `json:"trendingNow"`
	TopRated         []Movie `json:"topRated"`
	ActionMovies     []Movie `json:"actionMovies"`
	ComedyMovies     []Movie `json:"comedyMovies"`
	HorrorMovies     []Movie `json:"horrorMovies"`
	RomanceMovies    []Movie `json:"romanceMovies"`
	Documentaries    []Movie `json:"documentaries"`
}

// Row is a titled result set as rendered below the banner.
type Row struct {
	Key    CategoryKey
	Title  string
	Movies []Movie
}

// Field returns a pointer to the page field that holds the given category.
func (p *CatalogPage) Field(key CategoryKey) *[]Movie {
	switch key {
	case NetflixOriginals:
		return &p.NetflixOriginals
	case TrendingNow:
		return &p.TrendingNow
	case TopRated:
		return &p.TopRated
	case ActionMovies:
		return &p.ActionMovies
	case ComedyMovies:
		return &p.ComedyMovies
	case HorrorMovies:
		return &p.HorrorMovies
	case RomanceMovies:
		return &p.RomanceMovies
	case Documentaries:
		return &p.Documentaries
	default:
		return nil
	}
}

// Rows returns the seven rows shown under the banner, in display order.
// Originals are not a row; they feed the banner.
func (p *CatalogPage) Rows() []Row {
	rows := make([]Row, 0, len(Categories)-1)
	for _, c := range Categories {
		if c.Key == NetflixOriginals {
			continue
		}
		rows = append(rows, Row{Key: c.Key, Title: c.Title, Movies: *p.Field(c.Key)})
	}
	return rows
}

// All returns every category, originals included, in fetch order.
func (p *CatalogPage) All() []Row {
	rows := make([]Row, 0, len(Categories))
	for _, c := range Categories {
		rows = append(rows, Row{Key: c.Key, Title: c.Title, Movies: *p.Field(c.Key)})
	}
	return rows
}

// Banner returns the originals entry at pick(len), or nil when there are no originals.
// A nil pick selects the first entry.
func (p *CatalogPage) Banner(pick func(n int) int) *Movie {
	n := len(p.NetflixOriginals)
	if n == 0 {
		return nil
	}
	i := 0
	if pick != nil {
		i = pick(n)
	}
	if i < 0 || i >= n {
		i = 0
	}
	m := p.NetflixOriginals[i]
	return &m
}
