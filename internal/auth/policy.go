package auth

import "github.com/okian/prospect/internal/domain/model"

// CanView reports whether p may read a's profile and rating breakdown.
// Public profiles are readable by anyone.
func CanView(p model.Principal, a model.Athlete) bool {
	return a.IsPublic || CanModify(p, a)
}

// CanModify reports whether p may edit or delete a's profile.
func CanModify(p model.Principal, a model.Athlete) bool {
	return p.IsAdmin() || a.OwnedBy(p.UserID)
}

// CanSetScores reports whether p may write sub-scores of an existing
// profile. Owners only choose scores at creation.
func CanSetScores(p model.Principal) bool {
	return p.IsAdmin()
}
