package simulate

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
)

// Finish is one runner crossing the line.
type Finish struct {
	RunnerName string
	House      string
	Minutes    int
	Seconds    int
	Hundredths int
}

// Time renders the finish as MM:SS.hh.
func (f Finish) Time() model.FinishTime {
	t, _ := model.NewFinishTime(f.Minutes, f.Seconds, f.Hundredths)
	return t
}

var (
	firstNames = []string{
		"Ava", "Ben", "Chloe", "Dan", "Ella", "Finn", "Grace", "Harry", "Isla", "Jack",
		"Kate", "Liam", "Mia", "Noah", "Olivia", "Patrick", "Ruby", "Sam", "Tom", "Zoe",
	}
	lastNames = []string{
		"Brown", "Chen", "Davies", "Evans", "Nguyen", "Patel", "Smith", "Taylor", "Wilson", "Wong",
	}
)

// Per-kilometre pace window in hundredths of a second: 3:30 to 6:30.
const (
	fastestPerKm = 210 * 100
	slowestPerKm = 390 * 100
)

// generateFinishes builds n finishes for distance. The same seed yields
// the same field. Names are numbered so every runner is unique.
func generateFinishes(n int, distance string, seed uint64) []Finish {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	km := distanceKm(distance)
	houses := model.Houses()

	out := make([]Finish, n)
	for i := range out {
		total := km * (fastestPerKm + rng.IntN(slowestPerKm-fastestPerKm))
		out[i] = Finish{
			RunnerName: firstNames[rng.IntN(len(firstNames))] + " " +
				lastNames[rng.IntN(len(lastNames))] + " " + strconv.Itoa(i+1),
			House:      string(houses[rng.IntN(len(houses))]),
			Minutes:    total / 6000,
			Seconds:    total / 100 % 60,
			Hundredths: total % 100,
		}
	}
	return out
}

func distanceKm(distance string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(distance, "km"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
