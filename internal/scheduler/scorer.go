package scheduler

import (
	"math/rand"

	"github.com/noah-isme/class-routine-api/internal/models"
)

const (
	preferenceFactor   = 3
	dailyLoadFactor    = 2
	timeOfDayFactor    = 1
	distributionBudget = 3
)

// scorer ranks feasible candidates, higher is better.
type scorer struct {
	prefs      *PreferenceIndex
	occ        *occupancy
	dailyLimit int
	rng        *rand.Rand
}

func (s *scorer) score(day models.WorkingDay, slot int, t target) float64 {
	d, sl := day.Index(), slot-1

	pref := s.prefs.Level(t.teacherID, day, slot).Weight()
	daily := s.dailyLimit - s.occ.dailyCount(t.semIdx, t.secIdx, d)
	band := models.TimeSlots[sl].Band.Weight()
	spread := distributionBudget - s.occ.othersAt(t.semIdx, t.secIdx, d, sl)

	return float64(preferenceFactor*pref+dailyLoadFactor*daily+timeOfDayFactor*band+spread) + s.rng.Float64()
}
