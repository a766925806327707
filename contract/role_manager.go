package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"traintrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var rolesLogger = flogging.MustGetLogger("traintrace.roles")

// trainerObjectType keys TrainerInfo entries. Attribute for composite key: identity.
const trainerObjectType = "Trainer"

// RoleManager handles the admin identity and the trainer set. The admin is a
// single identity fixed at initialization; trainer flags are granted and
// revoked by the admin. The admin is a trainer by definition of the
// authorization predicate, not by an entry in the trainer set, so nothing
// that touches the trainer set can strip the admin's rights.
type RoleManager struct {
	Ctx contractapi.TransactionContextInterface
}

// NewRoleManager creates a new instance of RoleManager.
func NewRoleManager(ctx contractapi.TransactionContextInterface) *RoleManager {
	return &RoleManager{Ctx: ctx}
}

// --- Key Creation Helpers (using Composite Keys) ---

func (rm *RoleManager) createAdminConfigKey() (string, error) {
	return rm.Ctx.GetStub().CreateCompositeKey(configObjectType, []string{"admin"})
}

func (rm *RoleManager) createTrainerCompositeKey(identity string) (string, error) {
	return rm.Ctx.GetStub().CreateCompositeKey(trainerObjectType, []string{identity})
}

// --- Role Queries ---

// AdminID returns the registered admin identity, or "" before InitLedger.
func (rm *RoleManager) AdminID() (string, error) {
	adminKey, err := rm.createAdminConfigKey()
	if err != nil {
		return "", fmt.Errorf("failed to create admin config key: %w", err)
	}
	adminBytes, err := rm.Ctx.GetStub().GetState(adminKey)
	if err != nil {
		return "", fmt.Errorf("ledger error reading admin identity: %w", err)
	}
	return string(adminBytes), nil
}

// IsAdmin reports whether identity is the registry admin.
func (rm *RoleManager) IsAdmin(identity string) (bool, error) {
	adminID, err := rm.AdminID()
	if err != nil {
		return false, err
	}
	return adminID != "" && identity == adminID, nil
}

// IsTrainer reports whether identity holds a trainer authorization. The admin
// counts as a trainer regardless of the trainer set.
func (rm *RoleManager) IsTrainer(identity string) (bool, error) {
	isAdmin, err := rm.IsAdmin(identity)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return true, nil
	}
	trainerKey, err := rm.createTrainerCompositeKey(identity)
	if err != nil {
		return false, fmt.Errorf("failed to create trainer key for '%s': %w", identity, err)
	}
	trainerBytes, err := rm.Ctx.GetStub().GetState(trainerKey)
	if err != nil {
		return false, fmt.Errorf("ledger error checking trainer flag for '%s': %w", identity, err)
	}
	return trainerBytes != nil, nil
}

func (rm *RoleManager) currentCallerID() (string, error) {
	clientIdentity := rm.Ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context")
	}
	id, err := clientIdentity.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity ID from context: %w", err)
	}
	if id == "" {
		return "", errors.New("client identity ID from context is empty")
	}
	return id, nil
}

// RequireAdmin fails with model.ErrUnauthorized unless the caller is the admin.
func (rm *RoleManager) RequireAdmin() error {
	callerID, err := rm.currentCallerID()
	if err != nil {
		return fmt.Errorf("failed to get caller identity for admin check: %w", err)
	}
	isAdmin, err := rm.IsAdmin(callerID)
	if err != nil {
		return fmt.Errorf("failed to check admin status for '%s': %w", callerID, err)
	}
	if !isAdmin {
		return fmt.Errorf("caller '%s' is not the registry admin: %w", callerID, model.ErrUnauthorized)
	}
	return nil
}

// RequireTrainer fails with model.ErrUnauthorized unless the caller is the
// admin or an authorized trainer.
func (rm *RoleManager) RequireTrainer() error {
	callerID, err := rm.currentCallerID()
	if err != nil {
		return fmt.Errorf("failed to get caller identity for trainer check: %w", err)
	}
	isTrainer, err := rm.IsTrainer(callerID)
	if err != nil {
		return fmt.Errorf("failed to check trainer status for '%s': %w", callerID, err)
	}
	if !isTrainer {
		return fmt.Errorf("caller '%s' is not an authorized trainer: %w", callerID, model.ErrUnauthorized)
	}
	return nil
}

// --- Trainer Set Mutations (admin only) ---

// Authorize adds identity to the trainer set.
func (rm *RoleManager) Authorize(identity string) error {
	if err := rm.RequireAdmin(); err != nil {
		return err
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return errors.New("trainer identity cannot be empty")
	}
	callerID, err := rm.currentCallerID()
	if err != nil {
		return fmt.Errorf("failed to get caller identity: %w", err)
	}
	ts, err := rm.Ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return fmt.Errorf("failed to get transaction timestamp: %w", err)
	}

	info := model.TrainerInfo{
		ObjectType:   trainerObjectType,
		Identity:     identity,
		AuthorizedBy: callerID,
		AuthorizedAt: ts.AsTime(),
	}
	infoBytes, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal TrainerInfo for '%s': %w", identity, err)
	}
	trainerKey, err := rm.createTrainerCompositeKey(identity)
	if err != nil {
		return fmt.Errorf("failed to create trainer key for '%s': %w", identity, err)
	}
	if err := rm.Ctx.GetStub().PutState(trainerKey, infoBytes); err != nil {
		return fmt.Errorf("failed to save trainer authorization for '%s': %w", identity, err)
	}
	rolesLogger.Infof("Trainer '%s' authorized by admin '%s'.", identity, callerID)
	return nil
}

// Revoke removes identity from the trainer set. Revoking an identity that is
// not a trainer is a no-op; revoking the admin's own entry has no effect on
// the admin's rights.
func (rm *RoleManager) Revoke(identity string) error {
	if err := rm.RequireAdmin(); err != nil {
		return err
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return errors.New("trainer identity cannot be empty")
	}
	trainerKey, err := rm.createTrainerCompositeKey(identity)
	if err != nil {
		return fmt.Errorf("failed to create trainer key for '%s': %w", identity, err)
	}
	trainerBytes, err := rm.Ctx.GetStub().GetState(trainerKey)
	if err != nil {
		return fmt.Errorf("ledger error checking trainer flag for '%s': %w", identity, err)
	}
	if trainerBytes == nil {
		rolesLogger.Infof("Identity '%s' holds no trainer authorization. No action taken for revocation.", identity)
		return nil
	}
	if err := rm.Ctx.GetStub().DelState(trainerKey); err != nil {
		return fmt.Errorf("failed to delete trainer authorization for '%s': %w", identity, err)
	}
	rolesLogger.Infof("Trainer authorization revoked for '%s'.", identity)
	return nil
}

// AllTrainers lists every trainer registration. Admin only.
func (rm *RoleManager) AllTrainers() ([]model.TrainerInfo, error) {
	if err := rm.RequireAdmin(); err != nil {
		return nil, err
	}
	resultsIterator, err := rm.Ctx.GetStub().GetStateByPartialCompositeKey(trainerObjectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("failed to get trainers iterator: %w", err)
	}
	defer resultsIterator.Close()

	trainers := []model.TrainerInfo{}
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			rolesLogger.Warningf("Failed to get next trainer from iterator: %v. Skipping.", iterErr)
			continue
		}
		var info model.TrainerInfo
		if err := json.Unmarshal(queryResponse.Value, &info); err != nil {
			rolesLogger.Warningf("Failed to unmarshal trainer data for key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		trainers = append(trainers, info)
	}
	return trainers, nil // Will be [] if empty, not null
}
