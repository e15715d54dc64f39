package domain

import (
	"fmt"
	"slices"
)

// TransitionError is returned when a policy forbids a status edge.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// TransitionPolicy decides which status edges are accepted.
// A nil edge table allows everything.
type TransitionPolicy struct {
	edges map[Status][]Status
}

// OpenPolicy accepts any edge. The operator is trusted.
func OpenPolicy() TransitionPolicy {
	return TransitionPolicy{}
}

// NewTransitionPolicy builds a policy from an explicit edge table.
func NewTransitionPolicy(edges map[Status][]Status) TransitionPolicy {
	table := make(map[Status][]Status, len(edges))
	for from, to := range edges {
		table[from] = slices.Clone(to)
	}
	return TransitionPolicy{edges: table}
}

// StrictPolicy accepts forward progress along ForwardPath (steps may be
// skipped), a move to any exception status from a non-terminal status,
// and a return request after delivery.
func StrictPolicy() TransitionPolicy {
	edges := make(map[Status][]Status)
	for i, from := range ForwardPath {
		if from.IsTerminal() {
			continue
		}
		next := slices.Clone(ForwardPath[i+1:])
		next = append(next, StatusCancelled, StatusReturnRequested, StatusReturned)
		edges[from] = next
	}
	edges[StatusDelivered] = []Status{StatusReturnRequested}
	edges[StatusReturnRequested] = []Status{StatusReturned, StatusCancelled}
	return NewTransitionPolicy(edges)
}

// IsOpen reports whether the policy accepts every edge.
func (p TransitionPolicy) IsOpen() bool {
	return p.edges == nil
}

// Allows reports whether moving from one status to another is accepted.
func (p TransitionPolicy) Allows(from, to Status) bool {
	if p.edges == nil {
		return true
	}
	return slices.Contains(p.edges[from], to)
}

// Check returns a *TransitionError when the edge is not accepted.
func (p TransitionPolicy) Check(from, to Status) error {
	if !p.Allows(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
