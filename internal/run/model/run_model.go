package model

import (
	"time"

	"github.com/go-sod/smote/internal/smote"
	"github.com/google/uuid"
)

type Status uint8

const (
	StatusNew Status = iota
	StatusFitted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFitted:
		return "fitted"
	case StatusFailed:
		return "failed"
	default:
		return "new"
	}
}

func NewRun(name, estimator string, cfg smote.Config, createdAt time.Time) Run {
	return Run{
		ID:        uuid.New(),
		Name:      name,
		Estimator: estimator,
		Config:    cfg,
		Status:    StatusNew,
		CreatedAt: createdAt,
	}
}

// Run records one balancing run and the estimator trained on its output.
type Run struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Estimator string       `json:"estimator"`
	Config    smote.Config `json:"config"`
	Classes   []string     `json:"classes"`
	Original  int          `json:"original"`
	Balanced  int          `json:"balanced"`
	Generated int          `json:"generated"`
	Rejected  int          `json:"rejected"`
	Status    Status       `json:"status"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (r Run) IsFitted() bool {
	return r.Status == StatusFitted
}

// Fitted marks the run as successful with the given outcome.
func (r Run) Fitted(res *smote.RunResult, original int) Run {
	r.Status = StatusFitted
	r.Original = original
	r.Balanced = res.Balanced.Len()
	r.Generated = res.Generated
	r.Rejected = res.Rejected
	r.Classes = res.Balanced.Classes
	return r
}

func (r Run) Failed(err error) Run {
	r.Status = StatusFailed
	r.Error = err.Error()
	return r
}
