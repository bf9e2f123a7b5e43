package leaderboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
)

var houseColors = map[model.House]types.Palette{
	"Sheaffe":   {Background: "#A7A6A4", Text: "#ffffff", Border: "#888784"},
	"Garran":    {Background: "#5C396F", Text: "#ffffff", Border: "#482c57"},
	"Burgmann":  {Background: "#FCCC00", Text: "#333333", Border: "#d9af00"},
	"Garnsey":   {Background: "#3C9BD1", Text: "#ffffff", Border: "#2a80b0"},
	"Hay":       {Background: "#0D0802", Text: "#ffffff", Border: "#291e14"},
	"Blaxland":  {Background: "#E63C2D", Text: "#ffffff", Border: "#c3321f"},
	"Edwards":   {Background: "#882426", Text: "#ffffff", Border: "#6a1c1e"},
	"Middelton": {Background: "#1DB678", Text: "#ffffff", Border: "#189a64"},
	"Eddison":   {Background: "#213B5E", Text: "#ffffff", Border: "#162945"},
	"Jones":     {Background: "#1A5630", Text: "#ffffff", Border: "#13401f"},
}

var defaultColors = types.Palette{Background: "#6b7280", Text: "#ffffff", Border: "#4b5563"}

// HouseColors returns the display palette for a house, or the neutral
// default for anything outside the mapping.
func HouseColors(h model.House) types.Palette {
	p, ok := houseColors[h]
	if !ok {
		p = defaultColors
	}
	p.Tint = Lighten(p.Background)
	return p
}

// Lighten mixes a #rrggbb colour with 80% white. Malformed input is
// returned unchanged.
func Lighten(hex string) string {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return hex
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return hex
	}
	mix := func(c uint64) int {
		return int(math.Round(float64(c)*0.2 + 255*0.8))
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(v>>16&0xff), mix(v>>8&0xff), mix(v&0xff))
}

// Medal names the podium place for rank, or "" outside the podium.
func Medal(rank int) string {
	switch rank {
	case 1:
		return "gold"
	case 2:
		return "silver"
	case 3:
		return "bronze"
	}
	return ""
}
