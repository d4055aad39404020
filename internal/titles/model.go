package titles

// SearchResponse mirrors the WatchMode search payload.
type SearchResponse struct {
	TitleResults  []SearchResult `json:"title_results"`
	PeopleResults []PersonResult `json:"people_results,omitempty"`
}

// SearchResult is a single title hit. Details is populated best-effort for
// the leading results only.
type SearchResult struct {
	ResultType string        `json:"result_type,omitempty"`
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	Type       string        `json:"type,omitempty"`
	Year       int           `json:"year,omitempty"`
	IMDBID     string        `json:"imdb_id,omitempty"`
	TMDBID     int           `json:"tmdb_id,omitempty"`
	TMDBType   string        `json:"tmdb_type,omitempty"`
	Details    *TitleDetails `json:"details,omitempty"`
}

// PersonResult is a person hit, passed through untouched.
type PersonResult struct {
	ResultType string `json:"result_type,omitempty"`
	ID         int    `json:"id"`
	Name       string `json:"name"`
	// WatchMode returns more person fields; only the ones clients consume
	// are mapped.
	Profession string `json:"main_profession,omitempty"`
}

// TitleDetails carries the full WatchMode title record including streaming
// sources when requested.
type TitleDetails struct {
	ID                   int      `json:"id"`
	Title                string   `json:"title"`
	OriginalTitle        string   `json:"original_title,omitempty"`
	PlotOverview         string   `json:"plot_overview,omitempty"`
	Type                 string   `json:"type,omitempty"`
	RuntimeMinutes       int      `json:"runtime_minutes,omitempty"`
	Year                 int      `json:"year,omitempty"`
	EndYear              int      `json:"end_year,omitempty"`
	ReleaseDate          string   `json:"release_date,omitempty"`
	IMDBID               string   `json:"imdb_id,omitempty"`
	TMDBID               int      `json:"tmdb_id,omitempty"`
	TMDBType             string   `json:"tmdb_type,omitempty"`
	Genres               []int    `json:"genres,omitempty"`
	GenreNames           []string `json:"genre_names,omitempty"`
	UserRating           float64  `json:"user_rating,omitempty"`
	CriticScore          int      `json:"critic_score,omitempty"`
	USRating             string   `json:"us_rating,omitempty"`
	Poster               string   `json:"poster,omitempty"`
	PosterMedium         string   `json:"posterMedium,omitempty"`
	PosterLarge          string   `json:"posterLarge,omitempty"`
	Backdrop             string   `json:"backdrop,omitempty"`
	OriginalLanguage     string   `json:"original_language,omitempty"`
	SimilarTitles        []int    `json:"similar_titles,omitempty"`
	Networks             []int    `json:"networks,omitempty"`
	NetworkNames         []string `json:"network_names,omitempty"`
	RelevancePercentile  float64  `json:"relevance_percentile,omitempty"`
	PopularityPercentile float64  `json:"popularity_percentile,omitempty"`
	Trailer              string   `json:"trailer,omitempty"`
	TrailerThumbnail     string   `json:"trailer_thumbnail,omitempty"`
	EnglishTitle         string   `json:"english_title,omitempty"`
	Sources              []Source `json:"sources,omitempty"`
}

// Source describes where a title can be streamed.
type Source struct {
	SourceID int     `json:"source_id,omitempty"`
	Name     string  `json:"name"`
	Type     string  `json:"type,omitempty"`
	Region   string  `json:"region,omitempty"`
	WebURL   string  `json:"web_url,omitempty"`
	Format   string  `json:"format,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Seasons  string  `json:"seasons,omitempty"`
	Episodes string  `json:"episodes,omitempty"`
}
