// Package approval implements the listing moderation state machine.
//
// The machine has three states — pending, approved, rejected — and three
// events: approve and reject (moderator), and resubmit (the original
// seller, from rejected back to pending). Transition is pure: it performs
// no I/O and returns a mutated copy of the listing, leaving persistence
// and concurrency control to the caller.
package approval

import (
	"fmt"
	"strings"
	"time"

	"relove/internal/models"
)

// Kind identifies a moderation event.
type Kind string

const (
	KindApprove  Kind = "approve"
	KindReject   Kind = "reject"
	KindResubmit Kind = "resubmit"
)

// Actor is the principal attempting a transition. Moderator capability is
// established upstream (by the authorization middleware) and trusted here.
type Actor struct {
	ID        uint
	Moderator bool
}

// Action is a moderation event applied to a listing.
type Action struct {
	Kind  Kind
	Actor Actor
	// Notes is required for reject, optional for approve, ignored for resubmit.
	Notes string
}

// Transition applies the action to the listing and returns the resulting
// listing. The input is never modified. Errors are typed:
// UNAUTHORIZED when the actor lacks the required capability or ownership,
// MISSING_NOTES for a reject without a reason, and INVALID_STATE when the
// event is not valid from the current status.
func Transition(l models.Listing, act Action, now time.Time) (models.Listing, error) {
	switch act.Kind {
	case KindApprove:
		if !act.Actor.Moderator {
			return l, models.NewUnauthorizedError("Moderator access required")
		}
		if l.ApprovalStatus != models.ApprovalStatusPending {
			return l, models.NewInvalidStateError(
				fmt.Sprintf("cannot approve listing in status %q", l.ApprovalStatus))
		}
		reviewer := act.Actor.ID
		l.ApprovalStatus = models.ApprovalStatusApproved
		l.IsActive = true
		l.AdminNotes = strings.TrimSpace(act.Notes)
		l.ApprovedAt = &now
		l.ApprovedBy = &reviewer
		return l, nil

	case KindReject:
		if !act.Actor.Moderator {
			return l, models.NewUnauthorizedError("Moderator access required")
		}
		notes := strings.TrimSpace(act.Notes)
		if notes == "" {
			return l, models.NewMissingNotesError()
		}
		if l.ApprovalStatus != models.ApprovalStatusPending {
			return l, models.NewInvalidStateError(
				fmt.Sprintf("cannot reject listing in status %q", l.ApprovalStatus))
		}
		reviewer := act.Actor.ID
		l.ApprovalStatus = models.ApprovalStatusRejected
		l.IsActive = false
		l.AdminNotes = notes
		l.ApprovedAt = &now
		l.ApprovedBy = &reviewer
		return l, nil

	case KindResubmit:
		if act.Actor.ID != l.SellerID {
			return l, models.NewUnauthorizedError("Only the listing's seller can resubmit")
		}
		if l.ApprovalStatus != models.ApprovalStatusRejected {
			return l, models.NewInvalidStateError(
				fmt.Sprintf("cannot resubmit listing in status %q", l.ApprovalStatus))
		}
		l.ApprovalStatus = models.ApprovalStatusPending
		l.IsActive = false
		l.AdminNotes = ""
		l.ApprovedAt = nil
		l.ApprovedBy = nil
		return l, nil

	default:
		return l, models.NewValidationError(fmt.Sprintf("unknown moderation action %q", act.Kind))
	}
}
