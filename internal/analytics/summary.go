package analytics

import (
	"time"

	"alcyxob/workout-tracker/internal/domain"
)

// Summary is an overview of a user's completed training history.
type Summary struct {
	CompletedTrainings int     `json:"completedTrainings"`
	TotalVolume        float64 `json:"totalVolume"`
	Streak             int     `json:"streak"`
	PersonalRecords    int     `json:"personalRecords"`
	TrainingDays       int     `json:"trainingDays"`
}

func Summarize(trainings []domain.Training, today time.Time) Summary {
	done := completed(trainings)
	var volume float64
	for _, t := range done {
		volume += TrainingVolume(t)
	}
	return Summary{
		CompletedTrainings: len(done),
		TotalVolume:        volume,
		Streak:             Streak(trainings, today),
		PersonalRecords:    len(AllPRs(trainings)),
		TrainingDays:       len(Frequency(trainings)),
	}
}
