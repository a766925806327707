// File: model/identities.go
package model

import "time"

// TrainerInfo records a trainer authorization. Presence of the entry on the
// ledger is what makes an identity a trainer; revocation deletes it.
type TrainerInfo struct {
	ObjectType   string    `json:"objectType"` // "Trainer"
	Identity     string    `json:"identity"`   // full client identity string
	AuthorizedBy string    `json:"authorizedBy"`
	AuthorizedAt time.Time `json:"authorizedAt"`
}
