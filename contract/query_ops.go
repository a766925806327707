package contract

import (
	"fmt"

	"traintrace/fhe"
	"traintrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Query Functions ---

// requireRecordAccess enforces the read predicate for a record: admin, any
// trainer, or the record's own employee.
func (s *TrainingSmartContract) requireRecordAccess(rm *RoleManager, record *model.TrainingRecord, callerID string) error {
	isTrainer, err := rm.IsTrainer(callerID) // admin included
	if err != nil {
		return fmt.Errorf("failed to check trainer status for '%s': %w", callerID, err)
	}
	if isTrainer || record.Employee == callerID {
		return nil
	}
	return fmt.Errorf("caller '%s' may not read record %d: %w", callerID, record.ID, model.ErrUnauthorized)
}

// getRecordForCaller fetches a record and applies the read predicate.
func (s *TrainingSmartContract) getRecordForCaller(ctx contractapi.TransactionContextInterface, recordID uint64) (*model.TrainingRecord, error) {
	actor, err := s.getCurrentActorInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor info: %w", err)
	}
	record, err := s.getRecordByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("training record %d does not exist", recordID)
	}
	if err := s.requireRecordAccess(NewRoleManager(ctx), record, actor.fullID); err != nil {
		return nil, err
	}
	return record, nil
}

// GetTrainingRecord returns the plaintext view of a record. Caller must be
// the admin, a trainer, or the record's employee. The encrypted handles are
// not part of the view.
func (s *TrainingSmartContract) GetTrainingRecord(ctx contractapi.TransactionContextInterface, recordID uint64) (*model.TrainingRecordView, error) {
	logger.Debugf("Chaincode Call: GetTrainingRecord for record %d", recordID)
	record, err := s.getRecordForCaller(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("GetTrainingRecord: %w", err)
	}
	return record.View(), nil
}

// GetEncryptedCompletion returns the opaque completion handle. Decryption is
// the coprocessor's business, against the caller's granted permission.
func (s *TrainingSmartContract) GetEncryptedCompletion(ctx contractapi.TransactionContextInterface, recordID uint64) (fhe.Handle, error) {
	logger.Debugf("Chaincode Call: GetEncryptedCompletion for record %d", recordID)
	record, err := s.getRecordForCaller(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("GetEncryptedCompletion: %w", err)
	}
	return record.Completion, nil
}

// GetEncryptedCertification returns the opaque certification handle.
func (s *TrainingSmartContract) GetEncryptedCertification(ctx contractapi.TransactionContextInterface, recordID uint64) (fhe.Handle, error) {
	logger.Debugf("Chaincode Call: GetEncryptedCertification for record %d", recordID)
	record, err := s.getRecordForCaller(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("GetEncryptedCertification: %w", err)
	}
	return record.Certification, nil
}

// IsTrainingExpired reports whether a record's validity window has elapsed.
// Public read; a record with no computed expiry (never completed, or last
// completion was negative) is not expired. Unknown record ids answer false
// rather than failing.
func (s *TrainingSmartContract) IsTrainingExpired(ctx contractapi.TransactionContextInterface, recordID uint64) (bool, error) {
	logger.Debugf("Chaincode Call: IsTrainingExpired for record %d (public access)", recordID)
	record, err := s.getRecordByID(ctx, recordID)
	if err != nil {
		return false, fmt.Errorf("IsTrainingExpired: %w", err)
	}
	if record == nil || record.ExpiresAt.IsZero() {
		return false, nil
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return false, fmt.Errorf("IsTrainingExpired: failed to get transaction timestamp: %w", err)
	}
	return now.After(record.ExpiresAt), nil
}

// GetEmployeeTrainingStatus returns the ordered record-id sequence for an
// employee. Public read; unknown employees get an empty sequence.
func (s *TrainingSmartContract) GetEmployeeTrainingStatus(ctx contractapi.TransactionContextInterface, employee string) ([]uint64, error) {
	logger.Debugf("Chaincode Call: GetEmployeeTrainingStatus for '%s' (public access)", employee)
	if err := s.validateRequiredString(employee, "employee", maxStringInputLength); err != nil {
		return nil, err
	}
	return s.readEmployeeIndex(ctx, employee) // [] if unknown, not null
}

// GetMyTrainingRecords returns the plaintext views of every record the
// caller is the employee of.
func (s *TrainingSmartContract) GetMyTrainingRecords(ctx contractapi.TransactionContextInterface) ([]*model.TrainingRecordView, error) {
	actor, err := s.getCurrentActorInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetMyTrainingRecords: failed to get actor info: %w", err)
	}
	logger.Debugf("Chaincode Call: GetMyTrainingRecords for '%s'", actor.fullID)

	ids, err := s.readEmployeeIndex(ctx, actor.fullID)
	if err != nil {
		return nil, fmt.Errorf("GetMyTrainingRecords: %w", err)
	}
	views := []*model.TrainingRecordView{}
	for _, id := range ids {
		record, err := s.getRecordByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("GetMyTrainingRecords: %w", err)
		}
		if record == nil {
			logger.Warningf("GetMyTrainingRecords: index for '%s' references missing record %d. Skipping.", actor.fullID, id)
			continue
		}
		views = append(views, record.View())
	}
	return views, nil // Will be [] if empty, not null
}
