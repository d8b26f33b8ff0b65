package booking

import "regatta/internal/models"

// Lifecycle manages booking status transitions and who may trigger them.
type Lifecycle struct {
	transitions map[models.Status][]models.Status
}

// NewLifecycle creates the lifecycle with its fixed transition table.
// Terminal statuses have no outgoing transitions.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		transitions: map[models.Status][]models.Status{
			models.StatusPending:   {models.StatusConfirmed, models.StatusRejected, models.StatusCancelled},
			models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled},
		},
	}
}

// CanTransition checks if the transition is allowed, ignoring the actor.
func (l *Lifecycle) CanTransition(from, to models.Status) bool {
	for _, s := range l.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// allowedFor checks the actor's authority over the target status.
// Cancelling is open to both roles; confirm, reject and complete are
// administrator decisions.
func allowedFor(to models.Status, role models.Role) bool {
	if role == models.RoleAdmin {
		return true
	}
	return to == models.StatusCancelled
}

// Authorize checks both the transition table and the actor's role.
// It returns ErrInvalidTransition for a move the table forbids and
// ErrForbidden for a move the role may not trigger. Ownership of the
// booking (a customer may only cancel their own) is the caller's check.
func (l *Lifecycle) Authorize(from, to models.Status, role models.Role) error {
	if !to.Valid() || !l.CanTransition(from, to) {
		return ErrInvalidTransition
	}
	if !allowedFor(to, role) {
		return ErrForbidden
	}
	return nil
}
