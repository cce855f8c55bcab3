package dispatch

import (
	"errors"
	"fmt"

	"spacecore/internal/combat"
	"spacecore/internal/corp"
	"spacecore/internal/world"
)

// Fault :
// The normative error shape of §6/§7: an HTTP-style status, a
// human-readable detail, and an optional machine-readable code for
// clients that want to branch on it without parsing `Detail`.
type Fault struct {
	Status int
	Detail string
	Code   string
}

func (f *Fault) Error() string {
	if f.Code != "" {
		return fmt.Sprintf("%s: %s", f.Code, f.Detail)
	}
	return f.Detail
}

// newFault :
func newFault(status int, code, detail string) *Fault {
	return &Fault{Status: status, Code: code, Detail: detail}
}

// translate :
// Maps a domain error raised by world/combat/corp to the normative
// status code taxonomy of §7. A *Fault already carries its own status
// and passes through unchanged; anything unrecognized is treated as
// an internal invariant violation.
func translate(err error) *Fault {
	if err == nil {
		return nil
	}

	var fault *Fault
	if errors.As(err, &fault) {
		return fault
	}

	var notFound *world.NotFoundError
	if errors.As(err, &notFound) {
		return newFault(404, "not_found", err.Error())
	}
	var conflict *world.ConflictError
	if errors.As(err, &conflict) {
		return newFault(409, "state_conflict", err.Error())
	}

	var alreadyMember *corp.AlreadyMemberError
	if errors.As(err, &alreadyMember) {
		return newFault(400, "already_in_corporation", err.Error())
	}
	var notMember *corp.NotMemberError
	if errors.As(err, &notMember) {
		return newFault(400, "not_a_member", err.Error())
	}
	var insufficientFunds *corp.InsufficientFundsError
	if errors.As(err, &insufficientFunds) {
		return newFault(400, "insufficient_funds", err.Error())
	}
	var invalidInvite *corp.InvalidInviteCodeError
	if errors.As(err, &invalidInvite) {
		return newFault(400, "invalid_invite_code", err.Error())
	}
	var selfKick *corp.SelfKickError
	if errors.As(err, &selfKick) {
		return newFault(400, "self_kick", err.Error())
	}
	var targetNotMember *corp.TargetNotMemberError
	if errors.As(err, &targetNotMember) {
		return newFault(400, "target_not_member", err.Error())
	}
	var invalidName *corp.InvalidNameError
	if errors.As(err, &invalidName) {
		return newFault(400, "invalid_name", err.Error())
	}

	var noOpponents *combat.NoOpponentsError
	if errors.As(err, &noOpponents) {
		return newFault(409, "no_opponents", err.Error())
	}
	var staleRound *combat.StaleRoundError
	if errors.As(err, &staleRound) {
		return newFault(409, "stale_round", err.Error())
	}
	var notParticipant *combat.NotParticipantError
	if errors.As(err, &notParticipant) {
		return newFault(403, "not_participant", err.Error())
	}
	var invalidAction *combat.InvalidActionError
	if errors.As(err, &invalidAction) {
		return newFault(400, "invalid_action", err.Error())
	}
	var garrisonConflict *combat.GarrisonConflictError
	if errors.As(err, &garrisonConflict) {
		return newFault(409, "garrison_conflict", err.Error())
	}
	var combatNotFound *combat.NotFoundError
	if errors.As(err, &combatNotFound) {
		return newFault(404, "not_found", err.Error())
	}

	return newFault(500, "internal", err.Error())
}
