package types

// SurveyRequest is the answer sheet of the fixed survey form.
type SurveyRequest struct {
	TargetGender  string   `json:"target_gender"`
	TargetAge     string   `json:"target_age"`
	TexturePref   string   `json:"texture_pref"`
	Disease       string   `json:"disease"`
	Constitution1 string   `json:"constitution1"`
	Constitution2 string   `json:"constitution2"`
	Expectation   string   `json:"expectation"`
	Expectation1  string   `json:"expectation1,omitempty"`
	Expectation2  string   `json:"expectation2,omitempty"`
	AvoidGrains   []string `json:"avoid_grains"`
	Frequency     string   `json:"frequency"`
}

type SurveyQuestion struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Options []string `json:"options"`
}

type Recipe struct {
	RecipeKey string `json:"recipeKey"`
	RecipeNo  string `json:"recipeNo"`
	RecipeNm  string `json:"recipeNm"`
}

type CookingRequest struct {
	Text       string   `json:"text"`
	RecipeList []Recipe `json:"recipe_list"`
}

type SelectedMenu struct {
	Recipe
	Reason string `json:"reason"`
}
