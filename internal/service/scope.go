package service

import "github.com/google/uuid"

// Scope is the explicit capability context passed into every core operation.
// It replaces any ambient "system user" bypass: authorization is always an
// explicit, testable input.
type Scope struct {
	ActingCompanyID uuid.UUID
	SystemScope     bool
	Actor           string // recorded on audit rows
}

// SystemScope returns a scope that may act for any company.
func NewSystemScope(actor string) Scope {
	return Scope{SystemScope: true, Actor: actor}
}

func (s Scope) canActFor(companyID uuid.UUID) bool {
	return s.SystemScope || s.ActingCompanyID == companyID
}

func (s Scope) actor() string {
	if s.Actor != "" {
		return s.Actor
	}
	return "system"
}
