package contract

import (
	"errors"
	"fmt"
	"time"

	"traintrace/fhe"
	"traintrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("traintrace.contract")

// Object types for composite keys, also usable as 'docType' for CouchDB queries.
const (
	moduleObjectType        = "TrainingModule"
	recordObjectType        = "TrainingRecord"
	employeeIndexObjectType = "EmployeeIndex" // employee identity -> record id sequence
	configObjectType        = "Config"        // admin identity, record counter
)

// Constants for input validation and limits
const (
	maxStringInputLength = 256
	maxNotesLength       = 1024
)

// registryPrincipal is the identity under which the registry itself holds
// decrypt permissions on the handles it stores.
const registryPrincipal = "traintrace-registry"

// seededModules is the module catalog written to the ledger at initialization.
// GetActiveTrainingModules always answers from this list.
var seededModules = []model.TrainingModule{
	{ID: "data-privacy", Name: "Data Privacy Fundamentals", Description: "Handling of personal data in day-to-day work", DurationDays: 30},
	{ID: "gdpr-compliance", Name: "GDPR Compliance", Description: "Obligations under the EU General Data Protection Regulation", DurationDays: 45},
	{ID: "security-awareness", Name: "Security Awareness", Description: "Phishing, credential hygiene and device security", DurationDays: 60},
	{ID: "incident-response", Name: "Incident Response", Description: "Reporting and escalation of security incidents", DurationDays: 30},
}

// TrainingSmartContract provides functions for managing employee training
// records with coprocessor-encrypted completion status.
// @contract:TrainingSmartContract
type TrainingSmartContract struct {
	contractapi.Contract

	// Coprocessor performs all encryption and decrypt-permission management
	// on the registry's behalf.
	Coprocessor fhe.Coprocessor
}

// NewSmartContract returns a contract wired to the ledger-backed coprocessor.
func NewSmartContract() *TrainingSmartContract {
	return &TrainingSmartContract{Coprocessor: fhe.NewLedgerCoprocessor()}
}

// actorInfo holds commonly needed details about the transaction invoker.
type actorInfo struct {
	fullID string
	mspID  string
}

func (s *TrainingSmartContract) getCurrentActorInfo(ctx contractapi.TransactionContextInterface) (*actorInfo, error) {
	clientIdentity := ctx.GetClientIdentity()
	if clientIdentity == nil {
		return nil, errors.New("client identity is nil from context")
	}
	fullID, err := clientIdentity.GetID()
	if err != nil {
		return nil, fmt.Errorf("failed to get client identity ID from context: %w", err)
	}
	if fullID == "" {
		return nil, errors.New("client identity ID from context is empty")
	}
	mspID, err := clientIdentity.GetMSPID()
	if err != nil {
		return nil, fmt.Errorf("failed to get client MSPID from context: %w", err)
	}
	return &actorInfo{fullID: fullID, mspID: mspID}, nil
}

// InitLedger bootstraps the registry: the caller becomes the permanent admin
// and the built-in module catalog is written to the ledger. It can only be
// run once; the admin identity never changes afterwards.
func (s *TrainingSmartContract) InitLedger(ctx contractapi.TransactionContextInterface) error {
	logger.Info("Attempting to initialize training registry...")
	rm := NewRoleManager(ctx)

	existingAdmin, err := rm.AdminID()
	if err != nil {
		return fmt.Errorf("InitLedger: failed to check for existing admin: %w", err)
	}
	if existingAdmin != "" {
		return errors.New("registry is already initialized; InitLedger cannot be re-run")
	}

	actor, err := s.getCurrentActorInfo(ctx)
	if err != nil {
		return fmt.Errorf("InitLedger: failed to get caller identity: %w", err)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("InitLedger: failed to get transaction timestamp: %w", err)
	}

	adminKey, err := rm.createAdminConfigKey()
	if err != nil {
		return fmt.Errorf("InitLedger: failed to create admin config key: %w", err)
	}
	if err := ctx.GetStub().PutState(adminKey, []byte(actor.fullID)); err != nil {
		return fmt.Errorf("InitLedger: failed to save admin identity: %w", err)
	}
	logger.Infof("InitLedger: Identity '%s' (MSP '%s') registered as registry admin.", actor.fullID, actor.mspID)

	for _, seed := range seededModules {
		module := seed
		module.ObjectType = moduleObjectType
		module.Active = true
		module.CreatedBy = actor.fullID
		module.CreatedAt = now
		if err := s.putModule(ctx, &module); err != nil {
			return fmt.Errorf("InitLedger: failed to seed module '%s': %w", module.ID, err)
		}
		logger.Infof("InitLedger: Seeded training module '%s' (%d days).", module.ID, module.DurationDays)
	}

	logger.Info("Training registry initialized successfully.")
	return nil
}

// resolve a duration in days against the tx timestamp.
func expiryFrom(completedAt time.Time, durationDays int) time.Time {
	return completedAt.AddDate(0, 0, durationDays)
}
