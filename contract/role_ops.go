package contract

import (
	"fmt"

	"traintrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Role Management Wrappers (Delegating to RoleManager) ---

// AuthorizeTrainer adds an identity to the trainer set. Admin only.
func (s *TrainingSmartContract) AuthorizeTrainer(ctx contractapi.TransactionContextInterface, identity string) error {
	logger.Infof("Chaincode Call: AuthorizeTrainer for '%s'", identity)
	if err := NewRoleManager(ctx).Authorize(identity); err != nil {
		return fmt.Errorf("AuthorizeTrainer: %w", err)
	}
	s.emitRegistryEvent(ctx, "TrainerAuthorized", map[string]interface{}{"identity": identity})
	return nil
}

// RevokeTrainer removes an identity from the trainer set. Admin only. The
// admin's own rights are implicit and cannot be revoked through this path.
func (s *TrainingSmartContract) RevokeTrainer(ctx contractapi.TransactionContextInterface, identity string) error {
	logger.Infof("Chaincode Call: RevokeTrainer for '%s'", identity)
	if err := NewRoleManager(ctx).Revoke(identity); err != nil {
		return fmt.Errorf("RevokeTrainer: %w", err)
	}
	s.emitRegistryEvent(ctx, "TrainerRevoked", map[string]interface{}{"identity": identity})
	return nil
}

// IsTrainer reports whether an identity may act as a trainer. Public read;
// answers true for the admin as well.
func (s *TrainingSmartContract) IsTrainer(ctx contractapi.TransactionContextInterface, identity string) (bool, error) {
	logger.Debugf("Chaincode Call: IsTrainer for '%s'", identity)
	return NewRoleManager(ctx).IsTrainer(identity)
}

// GetAllTrainers lists every trainer registration. Admin only.
func (s *TrainingSmartContract) GetAllTrainers(ctx contractapi.TransactionContextInterface) ([]model.TrainerInfo, error) {
	logger.Debug("Chaincode Call: GetAllTrainers")
	return NewRoleManager(ctx).AllTrainers()
}
