package model

import (
	"time"

	"traintrace/fhe"
)

// TrainingModule is a durable training-requirement definition. Completing a
// record for a module keeps the employee compliant for DurationDays.
type TrainingModule struct {
	ObjectType   string    `json:"objectType"` // "TrainingModule"
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	DurationDays int       `json:"durationDays"`
	Active       bool      `json:"active"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TrainingRecord tracks one training assignment for one employee. The
// completion and certification flags are stored only as opaque coprocessor
// handles; the registry never sees their plaintext after encryption.
type TrainingRecord struct {
	ObjectType         string     `json:"objectType"` // "TrainingRecord"
	ID                 uint64     `json:"id"`
	Employee           string     `json:"employee"`     // full client identity of the subject
	EmployeeName       string     `json:"employeeName"` // display name, free text
	ModuleID           string     `json:"moduleId"`
	ModuleDurationDays int        `json:"moduleDurationDays"` // snapshot of the module duration at creation
	Completion         fhe.Handle `json:"completion"`
	Certification      fhe.Handle `json:"certification"`
	CompletedAt        time.Time  `json:"completedAt"` // zero until completeTraining is called
	ExpiresAt          time.Time  `json:"expiresAt"`   // zero until a completed=true call
	Active             bool       `json:"active"`
	Score              int        `json:"score"`
	Notes              string     `json:"notes"`
	CreatedBy          string     `json:"createdBy"`
	CreatedAt          time.Time  `json:"createdAt"`
	LastUpdatedAt      time.Time  `json:"lastUpdatedAt"`
}

// TrainingRecordView is the plaintext projection of a TrainingRecord returned
// by queries. The encrypted handles are omitted; they have dedicated getters.
type TrainingRecordView struct {
	ID                 uint64    `json:"id"`
	Employee           string    `json:"employee"`
	EmployeeName       string    `json:"employeeName"`
	ModuleID           string    `json:"moduleId"`
	ModuleDurationDays int       `json:"moduleDurationDays"`
	CompletedAt        time.Time `json:"completedAt"`
	ExpiresAt          time.Time `json:"expiresAt"`
	Active             bool      `json:"active"`
	Score              int       `json:"score"`
	Notes              string    `json:"notes"`
	CreatedAt          time.Time `json:"createdAt"`
	LastUpdatedAt      time.Time `json:"lastUpdatedAt"`
}

// View returns the plaintext projection of r.
func (r *TrainingRecord) View() *TrainingRecordView {
	if r == nil {
		return nil
	}
	return &TrainingRecordView{
		ID:                 r.ID,
		Employee:           r.Employee,
		EmployeeName:       r.EmployeeName,
		ModuleID:           r.ModuleID,
		ModuleDurationDays: r.ModuleDurationDays,
		CompletedAt:        r.CompletedAt,
		ExpiresAt:          r.ExpiresAt,
		Active:             r.Active,
		Score:              r.Score,
		Notes:              r.Notes,
		CreatedAt:          r.CreatedAt,
		LastUpdatedAt:      r.LastUpdatedAt,
	}
}
