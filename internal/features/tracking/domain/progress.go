package domain

// StepState is the display state of a progress step.
type StepState string

const (
	StepDone      StepState = "done"
	StepCurrent   StepState = "current"
	StepPending   StepState = "pending"
	StepCancelled StepState = "cancelled"
)

// ProgressStep is one of the six forward milestones shown on a timeline.
type ProgressStep struct {
	Key    Status    `json:"key"`
	Label  string    `json:"label"`
	State  StepState `json:"state"`
	Events []Event   `json:"events"`
}

// Progress projects a tracking onto the six forward steps. It has no state of
// its own and must be recomputed from the tracking on every read.
func Progress(t Tracking) []ProgressStep {
	current := t.CurrentStatus.forwardIndex()
	exception := t.CurrentStatus.IsException()

	steps := make([]ProgressStep, len(ForwardPath))
	for i, key := range ForwardPath {
		state := StepPending
		switch {
		case exception:
			state = StepCancelled
		case i < current:
			state = StepDone
		case i == current:
			state = StepCurrent
		}

		steps[i] = ProgressStep{
			Key:    key,
			Label:  HumanizeStatus(key),
			State:  state,
			Events: eventsForStep(t.Events, key),
		}
	}
	return steps
}

func eventsForStep(events []Event, key Status) []Event {
	out := []Event{}
	for _, ev := range events {
		k := ev.Type.stepKey()
		if k == string(key) || (key == StatusShipped && ev.Type == EventInTransit) {
			out = append(out, ev)
		}
	}
	return out
}
