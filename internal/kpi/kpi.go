// Package kpi aggregates a user's weekly prediction statistics into the
// figures shown on the profile screen.
package kpi

import "github.com/abrezinsky/swipick/internal/models"

// WeekPerformance is the accuracy of one week
type WeekPerformance struct {
	Percent float64 `json:"percent"`
	Week    int     `json:"week"`
}

// noWeek is reported as best and worst week when nothing was played
var noWeek = WeekPerformance{Percent: 0, Week: 1}

// ProfileKPI holds the raw profile figures
type ProfileKPI struct {
	Average     float64         `json:"average"`
	WeeksPlayed int             `json:"weeks_played"`
	Best        WeekPerformance `json:"best"`
	Worst       WeekPerformance `json:"worst"`
}

func played(stats []models.WeeklyStat) []models.WeeklyStat {
	out := make([]models.WeeklyStat, 0, len(stats))
	for _, w := range stats {
		if w.TotalPredictions > 0 {
			out = append(out, w)
		}
	}
	return out
}

// WeeksPlayed counts the weeks with at least one prediction
func WeeksPlayed(stats []models.WeeklyStat) int {
	return len(played(stats))
}

// WeightedAverage is the share of correct predictions over all predictions
// of played weeks, as a percentage. Weeks with more predictions weigh more.
func WeightedAverage(stats []models.WeeklyStat) float64 {
	var total, correct int
	for _, w := range played(stats) {
		total += w.TotalPredictions
		correct += w.CorrectPredictions
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// BestWeek returns the played week with the highest accuracy. Ties go to
// more correct predictions, then to the earlier week.
func BestWeek(stats []models.WeeklyStat) WeekPerformance {
	return pick(stats, func(a, b models.WeeklyStat) bool {
		if a.Accuracy != b.Accuracy {
			return a.Accuracy > b.Accuracy
		}
		if a.CorrectPredictions != b.CorrectPredictions {
			return a.CorrectPredictions > b.CorrectPredictions
		}
		return a.Week < b.Week
	})
}

// WorstWeek returns the played week with the lowest accuracy. Ties go to
// fewer correct predictions, then to the earlier week.
func WorstWeek(stats []models.WeeklyStat) WeekPerformance {
	return pick(stats, func(a, b models.WeeklyStat) bool {
		if a.Accuracy != b.Accuracy {
			return a.Accuracy < b.Accuracy
		}
		if a.CorrectPredictions != b.CorrectPredictions {
			return a.CorrectPredictions < b.CorrectPredictions
		}
		return a.Week < b.Week
	})
}

// pick returns the played week that wins under before
func pick(stats []models.WeeklyStat, before func(a, b models.WeeklyStat) bool) WeekPerformance {
	weeks := played(stats)
	if len(weeks) == 0 {
		return noWeek
	}
	winner := weeks[0]
	for _, w := range weeks[1:] {
		if before(w, winner) {
			winner = w
		}
	}
	return WeekPerformance{Percent: winner.Accuracy, Week: winner.Week}
}

// Compute derives every profile figure from a summary. A nil summary or one
// without weeks yields zero figures with week 1 as best and worst.
func Compute(summary *models.Summary) ProfileKPI {
	if summary == nil || len(summary.WeeklyStats) == 0 {
		return ProfileKPI{Best: noWeek, Worst: noWeek}
	}
	stats := summary.WeeklyStats
	return ProfileKPI{
		Average:     WeightedAverage(stats),
		WeeksPlayed: WeeksPlayed(stats),
		Best:        BestWeek(stats),
		Worst:       WorstWeek(stats),
	}
}
