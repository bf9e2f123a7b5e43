package api

import (
	"net/http"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/leaderboard"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
)

type ageGroupChoice struct {
	Value model.AgeGroup `json:"value"`
	Label string         `json:"label"`
}

type houseChoice struct {
	Name   model.House   `json:"name"`
	Colors types.Palette `json:"colors"`
}

// choicesResponse feeds the selects of the entry form.
type choicesResponse struct {
	Divisions       []model.Division `json:"divisions"`
	Distances       []model.Distance `json:"distances"`
	AgeGroups       []ageGroupChoice `json:"age_groups"`
	Houses          []houseChoice    `json:"houses"`
	LeaderboardSize int              `json:"leaderboard_size"`
}

// OptionsHandler serves the fixed enumerations used by the forms.
type OptionsHandler struct {
	deps Dependencies
}

// NewOptionsHandler creates a new options handler.
func NewOptionsHandler(deps Dependencies) *OptionsHandler {
	return &OptionsHandler{deps: deps}
}

// HandleOptions handles GET /api/options.
func (h *OptionsHandler) HandleOptions(w http.ResponseWriter, _ *http.Request) {
	resp := choicesResponse{
		Divisions:       model.Divisions(),
		Distances:       model.Distances(),
		LeaderboardSize: h.deps.LeaderboardSize(),
	}
	for _, a := range model.AgeGroups() {
		resp.AgeGroups = append(resp.AgeGroups, ageGroupChoice{Value: a, Label: a.Label()})
	}
	for _, house := range model.Houses() {
		resp.Houses = append(resp.Houses, houseChoice{Name: house, Colors: leaderboard.HouseColors(house)})
	}
	writeJSON(w, http.StatusOK, resp)
}
