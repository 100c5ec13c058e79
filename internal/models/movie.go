package models

import "strings"

// Movie is a movie or TV show summary as returned in a TMDB result set.
//
// TMDB mixes movies and shows in some lists, so either Title or Name is set.
type Movie struct {
	ID               int      `json:"id"`
	Title            string   `json:"title,omitempty"`
	Name             string   `json:"name,omitempty"`
	OriginalName     string   `json:"original_name,omitempty"`
	BackdropPath     string   `json:"backdrop_path,omitempty"`
	PosterPath       string   `json:"poster_path,omitempty"`
	Overview         string   `json:"overview"`
	MediaType        string   `json:"media_type,omitempty"`
	ReleaseDate      string   `json:"release_date,omitempty"`
	FirstAirDate     string   `json:"first_air_date,omitempty"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count"`
	Popularity       float64  `json:"popularity"`
	GenreIDs         []int    `json:"genre_ids,omitempty"`
	OriginCountry    []string `json:"origin_country,omitempty"`
	OriginalLanguage string   `json:"original_language,omitempty"`
}

// Image sizes served by the TMDB image CDN.
const (
	ImageOriginal = "original"
	ImageW500     = "w500"
)

// DisplayTitle returns the first non-empty of Title, Name and OriginalName.
func (m Movie) DisplayTitle() string {
	for _, s := range []string{m.Title, m.Name, m.OriginalName} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Date returns the release date for movies or the first air date for shows.
func (m Movie) Date() string {
	if m.ReleaseDate != "" {
		return m.ReleaseDate
	}
	return m.FirstAirDate
}

// BackdropURL returns the full-size backdrop URL, falling back to the poster.
func (m Movie) BackdropURL(base string) string {
	p := m.BackdropPath
	if p == "" {
		p = m.PosterPath
	}
	return imageURL(base, ImageOriginal, p)
}

// ThumbnailURL returns the row thumbnail URL, preferring the backdrop as the row layout does.
func (m Movie) ThumbnailURL(base string) string {
	p := m.BackdropPath
	if p == "" {
		p = m.PosterPath
	}
	return imageURL(base, ImageW500, p)
}

// PosterURL returns the poster URL at the given size.
func (m Movie) PosterURL(base, size string) string {
	return imageURL(base, size, m.PosterPath)
}

func imageURL(base, size, p string) string {
	if p == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + size + "/" + strings.TrimLeft(p, "/")
}
