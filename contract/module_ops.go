package contract

import (
	"errors"
	"fmt"

	"traintrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Module Catalog Operations ---

// AddTrainingModule inserts or overwrites a module definition. Admin only.
// Re-adding an existing key replaces the whole definition and reactivates it;
// there is no separate update or deactivate operation.
func (s *TrainingSmartContract) AddTrainingModule(ctx contractapi.TransactionContextInterface,
	moduleID string, name string, description string, durationDays int) error {

	rm := NewRoleManager(ctx)
	if err := rm.RequireAdmin(); err != nil {
		return fmt.Errorf("AddTrainingModule: %w", err)
	}

	if err := s.validateRequiredString(moduleID, "moduleID", maxStringInputLength); err != nil {
		return err
	}
	if err := s.validateRequiredString(name, "name", maxStringInputLength); err != nil {
		return err
	}
	if err := s.validateOptionalString(description, "description", maxNotesLength); err != nil {
		return err
	}
	if durationDays <= 0 {
		return errors.New("durationDays must be positive")
	}

	actor, err := s.getCurrentActorInfo(ctx)
	if err != nil {
		return fmt.Errorf("AddTrainingModule: failed to get actor info: %w", err)
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("AddTrainingModule: failed to get transaction timestamp: %w", err)
	}

	module := model.TrainingModule{
		ObjectType:   moduleObjectType,
		ID:           moduleID,
		Name:         name,
		Description:  description,
		DurationDays: durationDays,
		Active:       true,
		CreatedBy:    actor.fullID,
		CreatedAt:    now,
	}
	if err := s.putModule(ctx, &module); err != nil {
		return fmt.Errorf("AddTrainingModule: %w", err)
	}
	logger.Infof("Training module '%s' saved by admin '%s' (%d days).", moduleID, actor.fullID, durationDays)
	return nil
}

// GetActiveTrainingModules returns the built-in module catalog. Public read.
// Admin-added modules do not show up here; they are reachable through
// GetTrainingModule and usable for record creation.
func (s *TrainingSmartContract) GetActiveTrainingModules(ctx contractapi.TransactionContextInterface) ([]model.TrainingModule, error) {
	logger.Debug("Chaincode Call: GetActiveTrainingModules (public access)")
	modules := make([]model.TrainingModule, 0, len(seededModules))
	for _, seed := range seededModules {
		module := seed
		module.ObjectType = moduleObjectType
		module.Active = true
		modules = append(modules, module)
	}
	return modules, nil
}

// GetTrainingModule returns one module definition from the live catalog.
// Public read.
func (s *TrainingSmartContract) GetTrainingModule(ctx contractapi.TransactionContextInterface, moduleID string) (*model.TrainingModule, error) {
	logger.Debugf("Chaincode Call: GetTrainingModule for '%s' (public access)", moduleID)
	if err := s.validateRequiredString(moduleID, "moduleID", maxStringInputLength); err != nil {
		return nil, err
	}
	module, err := s.getModuleByID(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("GetTrainingModule: %w", err)
	}
	if module == nil {
		return nil, fmt.Errorf("training module '%s' does not exist", moduleID)
	}
	return module, nil
}
