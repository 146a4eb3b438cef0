package kpi

import "github.com/abrezinsky/swipick/internal/models"

// NormalizeWeek recomputes a week's figures from its per-prediction detail,
// when present. Accuracy then only counts predictions whose fixture has a
// result. Weeks without detail are returned unchanged.
func NormalizeWeek(w models.WeeklyStat) models.WeeklyStat {
	if len(w.Predictions) == 0 {
		return w
	}

	var correct, finished int
	for _, p := range w.Predictions {
		if p.Result != nil {
			finished++
		}
		if p.IsCorrect != nil && *p.IsCorrect {
			correct++
		}
	}

	w.TotalPredictions = len(w.Predictions)
	w.CorrectPredictions = correct
	w.FinishedPredictions = finished
	w.Accuracy = 0
	if finished > 0 {
		var finishedCorrect int
		for _, p := range w.Predictions {
			if p.Result != nil && p.IsCorrect != nil && *p.IsCorrect {
				finishedCorrect++
			}
		}
		w.Accuracy = float64(finishedCorrect) / float64(finished) * 100
	}
	return w
}

// NormalizeSummary applies NormalizeWeek to every week of s in place
func NormalizeSummary(s *models.Summary) *models.Summary {
	if s == nil {
		return nil
	}
	for i := range s.WeeklyStats {
		s.WeeklyStats[i] = NormalizeWeek(s.WeeklyStats[i])
	}
	return s
}
