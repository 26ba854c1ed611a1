package domain

import (
	"encoding/json"
	"math"
)

// Weight is a load in kilograms. Zero is allowed for bodyweight exercises.
type Weight struct {
	value float64
}

func NewWeight(v float64) (Weight, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Weight{}, newValidationError("weight", "must be a finite number")
	}
	if v < 0 {
		return Weight{}, newValidationError("weight", "must be >= 0, got %v", v)
	}
	return Weight{value: v}, nil
}

func (w Weight) Value() float64 { return w.value }

func (w Weight) MarshalJSON() ([]byte, error) { return json.Marshal(w.value) }

func (w *Weight) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewWeight(v)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Reps is a repetition count, always positive.
type Reps struct {
	value int
}

func NewReps(v int) (Reps, error) {
	if v <= 0 {
		return Reps{}, newValidationError("reps", "must be > 0, got %d", v)
	}
	return Reps{value: v}, nil
}

func (r Reps) Value() int { return r.value }

func (r Reps) MarshalJSON() ([]byte, error) { return json.Marshal(r.value) }

func (r *Reps) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := NewReps(v)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RestTime is the rest after a set, in seconds.
type RestTime struct {
	seconds int
}

func NewRestTime(seconds int) (RestTime, error) {
	if seconds < 0 {
		return RestTime{}, newValidationError("rest_time", "must be >= 0, got %d", seconds)
	}
	return RestTime{seconds: seconds}, nil
}

// OptionalRestTime returns nil for a nil input instead of failing.
func OptionalRestTime(seconds *int) (*RestTime, error) {
	if seconds == nil {
		return nil, nil
	}
	rt, err := NewRestTime(*seconds)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r RestTime) Seconds() int { return r.seconds }

func (r RestTime) MarshalJSON() ([]byte, error) { return json.Marshal(r.seconds) }

// Duration is an elapsed time in seconds, used by sets and trainings.
type Duration struct {
	seconds int
}

func NewDuration(seconds int) (Duration, error) {
	if seconds < 0 {
		return Duration{}, newValidationError("duration", "must be >= 0, got %d", seconds)
	}
	return Duration{seconds: seconds}, nil
}

// OptionalDuration returns nil for a nil input instead of failing.
func OptionalDuration(seconds *int) (*Duration, error) {
	if seconds == nil {
		return nil, nil
	}
	d, err := NewDuration(*seconds)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (d Duration) Seconds() int { return d.seconds }

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.seconds) }

// RPE is the rate of perceived exertion on a 1..10 scale.
type RPE struct {
	value int
}

func NewRPE(v int) (RPE, error) {
	if v < 1 || v > 10 {
		return RPE{}, newValidationError("rpe", "must be between 1 and 10, got %d", v)
	}
	return RPE{value: v}, nil
}

// OptionalRPE returns nil for a nil input instead of failing.
func OptionalRPE(v *int) (*RPE, error) {
	if v == nil {
		return nil, nil
	}
	rpe, err := NewRPE(*v)
	if err != nil {
		return nil, err
	}
	return &rpe, nil
}

func (r RPE) Value() int { return r.value }

func (r RPE) MarshalJSON() ([]byte, error) { return json.Marshal(r.value) }
