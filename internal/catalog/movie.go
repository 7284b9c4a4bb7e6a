package catalog

import (
	"math"
	"strconv"
	"strings"
)

// CandidateMovie is a catalog record offered as a possible match for a post.
type CandidateMovie struct {
	CatalogID   int64    `json:"catalog_id"`
	Title       string   `json:"title"`
	Year        int      `json:"year,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Rating      float64  `json:"rating"`
	Genres      []string `json:"genres"`
	Language    string   `json:"language"`
	Countries   []string `json:"countries,omitempty"`
	PosterURL   string   `json:"poster_url"`
	BackdropURL string   `json:"backdrop_url"`
	Synopsis    string   `json:"synopsis"`
	Director    string   `json:"director,omitempty"`
	Cast        []string `json:"cast,omitempty"`
	TrailerURL  string   `json:"trailer_url,omitempty"`
	Runtime     int      `json:"runtime,omitempty"`
	IndustryTag string   `json:"industry_tag"`
}

// UnknownDirector is used when the credits list no director.
const UnknownDirector = "Unknown"

var movieGenres = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// GenreName resolves a TMDB movie genre id.
func GenreName(id int) (string, bool) {
	name, ok := movieGenres[id]
	return name, ok
}

func genreNames(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := movieGenres[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// normalizeRating halves TMDB's 0-10 vote average onto the 0-5 review scale,
// rounded to one decimal.
func normalizeRating(voteAverage float64) float64 {
	if voteAverage <= 0 {
		return 0
	}
	return math.Min(5, math.Round(voteAverage*5)/10)
}

func releaseYear(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func imageURL(base, size, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || base == "" {
		return ""
	}
	return base + "/" + size + "/" + strings.TrimLeft(path, "/")
}

func youtubeURL(key string) string {
	return "https://www.youtube.com/watch?v=" + key
}
