package domain

import "strings"

type Genre string

const (
	GenreFiction    Genre = "FICTION"
	GenreNonFiction Genre = "NON_FICTION"
	GenreFantasy    Genre = "FANTASY"
	GenreScienceFic Genre = "SCIENCE_FICTION"
	GenreMystery    Genre = "MYSTERY"
	GenreRomance    Genre = "ROMANCE"
	GenreBiography  Genre = "BIOGRAPHY"
	GenreHistory    Genre = "HISTORY"
	GenrePoetry     Genre = "POETRY"
	GenreChildren   Genre = "CHILDREN"
)

var genres = []Genre{
	GenreFiction, GenreNonFiction, GenreFantasy, GenreScienceFic, GenreMystery,
	GenreRomance, GenreBiography, GenreHistory, GenrePoetry, GenreChildren,
}

func Genres() []Genre {
	out := make([]Genre, len(genres))
	copy(out, genres)
	return out
}

func (g Genre) Valid() bool {
	for _, v := range genres {
		if v == g {
			return true
		}
	}
	return false
}

// ParseGenre accepts any letter case and dashes in place of underscores.
func ParseGenre(s string) (Genre, bool) {
	g := Genre(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_"))
	return g, g.Valid()
}
