package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/reelx/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.DisplayTitle() }
func (i movieItem) Title() string       { return i.movie.DisplayTitle() }
func (i movieItem) Description() string {
	desc := fmt.Sprintf("★ %.1f", i.movie.VoteAverage)
	if d := i.movie.Date(); len(d) >= 4 {
		desc = fmt.Sprintf("%s • %s", d[:4], desc)
	}
	return desc
}

func movieItems(movies []models.Movie) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m}
	}
	return items
}
