package model

import "time"

// Corporation :
// A group of characters pooling ships and an invite code (§3). A
// character belongs to at most one corporation.
type Corporation struct {
	CorpID     string
	Name       string
	InviteCode string
	FoundedAt  time.Time
	Members    map[string]struct{}
	Ships      map[string]struct{}
}

// NewCorporation :
// Builds a corporation with the founder as its sole member.
func NewCorporation(corpID, name, inviteCode, founderID string, foundedAt time.Time) *Corporation {
	return &Corporation{
		CorpID:     corpID,
		Name:       name,
		InviteCode: inviteCode,
		FoundedAt:  foundedAt,
		Members:    map[string]struct{}{founderID: {}},
		Ships:      make(map[string]struct{}),
	}
}
