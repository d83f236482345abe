// Package metrics derives completion and accuracy figures from session,
// answer and hint state. It owns no state of its own; everything here is a
// pure read.
package metrics

import "practice-service/internal/models"

// Calculate derives the metrics snapshot from the current answers and the
// session-wide hint penalty. An answer counts as completed once it carries
// feedback. Accuracy is the feedback score sum minus the hint penalty,
// floored at zero, divided by the answered count and scaled by ten; it is 0
// when nothing has been answered.
func Calculate(answers []models.Answer, hintPenalty int) models.Metrics {
	m := models.Metrics{}

	var scoreSum float64
	for _, a := range answers {
		m.TotalTimeSpent += a.TimeSpentSeconds
		if a.Feedback != nil {
			m.QuestionsCompleted++
			scoreSum += a.Feedback.Score
		}
	}

	if m.QuestionsCompleted > 0 {
		adjusted := scoreSum - float64(hintPenalty)
		if adjusted < 0 {
			adjusted = 0
		}
		m.Accuracy = adjusted / float64(m.QuestionsCompleted) * 10
	}

	return m
}

// Progress reports the 1-based position within the question list. Percentage
// is 0 when the list is empty.
func Progress(currentIndex, total int) models.Progress {
	p := models.Progress{
		Current: currentIndex + 1,
		Total:   total,
	}
	if total > 0 {
		p.Percentage = float64(p.Current) / float64(total) * 100
	}
	return p
}
