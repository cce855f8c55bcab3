package corp

import "fmt"

// AlreadyMemberError :
// Returned by `Create`/`Join` when the acting character already
// belongs to a corporation.
type AlreadyMemberError struct {
	CharacterID string
}

func (e *AlreadyMemberError) Error() string {
	return fmt.Sprintf("character %q already belongs to a corporation", e.CharacterID)
}

// NotMemberError :
// Returned when a command requires corporation membership the actor
// does not hold.
type NotMemberError struct {
	CharacterID string
}

func (e *NotMemberError) Error() string {
	return fmt.Sprintf("character %q is not a member of this corporation", e.CharacterID)
}

// InsufficientFundsError :
// Returned when the actor's credits (on hand or in bank, depending on
// the operation) fall short of the required amount.
type InsufficientFundsError struct {
	Required  int
	Available int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, have %d", e.Required, e.Available)
}

// InvalidInviteCodeError :
// Returned by `Join` when the supplied invite code does not match the
// named corporation's current one.
type InvalidInviteCodeError struct{}

func (e *InvalidInviteCodeError) Error() string { return "invalid invite code" }

// SelfKickError :
// Returned when a character tries to kick itself; `Leave` is the
// correct command for that.
type SelfKickError struct{}

func (e *SelfKickError) Error() string { return "use leave to exit your own corporation" }

// TargetNotMemberError :
// Returned by `Kick` when the named target does not belong to the
// actor's corporation.
type TargetNotMemberError struct {
	CharacterID string
}

func (e *TargetNotMemberError) Error() string {
	return fmt.Sprintf("character %q is not a member of your corporation", e.CharacterID)
}

// InvalidNameError :
// Returned by `Create` for a name outside the 3-50 character range.
type InvalidNameError struct{}

func (e *InvalidNameError) Error() string { return "corporation name must be 3-50 characters" }
