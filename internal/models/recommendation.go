package models

// DefaultRecommendationLimit is the number of movies the questionnaire asks for.
const DefaultRecommendationLimit = 20

// RecommendationRequest is the body of POST /movies/recommend.
type RecommendationRequest struct {
	MainGenre      string `json:"main_genre"`
	Subgenre       string `json:"subgenre"`
	SubgenreDetail string `json:"subgenre_detail"`
	TimePeriod     string `json:"time_period"`
	Limit          int    `json:"limit"`
}
