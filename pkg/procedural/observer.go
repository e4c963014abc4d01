package procedural

import (
	"time"

	"github.com/harun/gearproc/pkg/scene"
)

// Execution statuses passed to an Observer
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusPanic   = "panic"
)

// Observer receives runtime events, typically to feed metrics
type Observer interface {
	ObserveExecution(id, status string, duration time.Duration)
	ObserveReport(id string, severity scene.Severity)
	SetLoaded(count int)
}

type nopObserver struct{}

func (nopObserver) ObserveExecution(string, string, time.Duration) {}
func (nopObserver) ObserveReport(string, scene.Severity)          {}
func (nopObserver) SetLoaded(int)                                 {}
