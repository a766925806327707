package contract

import (
	"fmt"
	"time"

	"traintrace/fhe"
	"traintrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Record Operations ---

// CreateTrainingRecord opens a training record for an employee against an
// active module and returns the allocated record id. Caller must be the
// admin or a trainer. Both encrypted flags start as encrypted false, with
// decrypt permission granted to the registry and to the employee.
func (s *TrainingSmartContract) CreateTrainingRecord(ctx contractapi.TransactionContextInterface,
	employee string, employeeName string, moduleID string) (uint64, error) {

	actor, err := s.getCurrentActorInfo(ctx)
	if err != nil {
		return 0, fmt.Errorf("CreateTrainingRecord: failed to get actor info: %w", err)
	}
	rm := NewRoleManager(ctx)
	if err := rm.RequireTrainer(); err != nil {
		return 0, fmt.Errorf("CreateTrainingRecord: %w", err)
	}

	if err := s.validateRequiredString(employee, "employee", maxStringInputLength); err != nil {
		return 0, err
	}
	if err := s.validateOptionalString(employeeName, "employeeName", maxStringInputLength); err != nil {
		return 0, err
	}
	if err := s.validateRequiredString(moduleID, "moduleID", maxStringInputLength); err != nil {
		return 0, err
	}

	module, err := s.getModuleByID(ctx, moduleID)
	if err != nil {
		return 0, fmt.Errorf("CreateTrainingRecord: %w", err)
	}
	if module == nil || !module.Active {
		return 0, fmt.Errorf("CreateTrainingRecord: module '%s': %w", moduleID, model.ErrModuleInactive)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return 0, fmt.Errorf("CreateTrainingRecord: failed to get transaction timestamp: %w", err)
	}

	recordID, err := s.readRecordCounter(ctx)
	if err != nil {
		return 0, fmt.Errorf("CreateTrainingRecord: %w", err)
	}

	completion, certification, err := s.encryptStatus(ctx, employee, false, false)
	if err != nil {
		return 0, fmt.Errorf("CreateTrainingRecord: %w", err)
	}

	record := model.TrainingRecord{
		ObjectType:         recordObjectType,
		ID:                 recordID,
		Employee:           employee,
		EmployeeName:       employeeName,
		ModuleID:           moduleID,
		ModuleDurationDays: module.DurationDays,
		Completion:         completion,
		Certification:      certification,
		Active:             true,
		CreatedBy:          actor.fullID,
		CreatedAt:          now,
		LastUpdatedAt:      now,
	}
	if err := s.putRecord(ctx, &record); err != nil {
		return 0, fmt.Errorf("CreateTrainingRecord: %w", err)
	}
	if err := s.appendEmployeeIndex(ctx, employee, recordID); err != nil {
		return 0, fmt.Errorf("CreateTrainingRecord: %w", err)
	}
	if err := s.writeRecordCounter(ctx, recordID+1); err != nil {
		return 0, fmt.Errorf("CreateTrainingRecord: %w", err)
	}

	s.emitRegistryEvent(ctx, "TrainingRecordCreated", map[string]interface{}{
		"recordId": recordID,
		"employee": employee,
		"moduleId": moduleID,
	})
	logger.Infof("Training record %d created for employee '%s' (module '%s') by '%s'.", recordID, employee, moduleID, actor.fullID)
	return recordID, nil
}

// CompleteTraining records a completion attempt. Caller must be the admin or
// a trainer. The call is re-entrant: every invocation fully replaces the
// previous completion data, re-encrypts both flags and recomputes the expiry.
func (s *TrainingSmartContract) CompleteTraining(ctx contractapi.TransactionContextInterface,
	recordID uint64, completed bool, certified bool, score int, notes string) error {

	actor, err := s.getCurrentActorInfo(ctx)
	if err != nil {
		return fmt.Errorf("CompleteTraining: failed to get actor info: %w", err)
	}
	rm := NewRoleManager(ctx)
	if err := rm.RequireTrainer(); err != nil {
		return fmt.Errorf("CompleteTraining: %w", err)
	}
	if err := s.validateOptionalString(notes, "notes", maxNotesLength); err != nil {
		return err
	}

	record, err := s.getRecordByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("CompleteTraining: %w", err)
	}
	if record == nil || !record.Active {
		return fmt.Errorf("CompleteTraining: record %d: %w", recordID, model.ErrRecordInactive)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("CompleteTraining: failed to get transaction timestamp: %w", err)
	}

	completion, certification, err := s.encryptStatus(ctx, record.Employee, completed, certified)
	if err != nil {
		return fmt.Errorf("CompleteTraining: %w", err)
	}

	record.Completion = completion
	record.Certification = certification
	record.CompletedAt = now
	record.Score = score
	record.Notes = notes
	if completed {
		record.ExpiresAt = expiryFrom(now, record.ModuleDurationDays)
	} else {
		record.ExpiresAt = time.Time{}
	}
	record.LastUpdatedAt = now

	if err := s.putRecord(ctx, record); err != nil {
		return fmt.Errorf("CompleteTraining: %w", err)
	}

	s.emitRegistryEvent(ctx, "TrainingCompleted", map[string]interface{}{
		"recordId":  recordID,
		"employee":  record.Employee,
		"completed": completed,
	})
	logger.Infof("Training record %d completion set by '%s' (completed=%t, score=%d).", recordID, actor.fullID, completed, score)
	return nil
}

// encryptStatus encrypts the two status flags and grants decrypt permission
// on both handles to the registry and to the employee.
func (s *TrainingSmartContract) encryptStatus(ctx contractapi.TransactionContextInterface,
	employee string, completed bool, certified bool) (fhe.Handle, fhe.Handle, error) {

	stub := ctx.GetStub()
	completionHandle, err := s.Coprocessor.EncryptBool(stub, completed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt completion flag: %w", err)
	}
	certificationHandle, err := s.Coprocessor.EncryptBool(stub, certified)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt certification flag: %w", err)
	}
	for _, grantee := range []string{registryPrincipal, employee} {
		if err := s.Coprocessor.AllowDecrypt(stub, completionHandle, grantee); err != nil {
			return nil, nil, fmt.Errorf("failed to grant decrypt on completion to '%s': %w", grantee, err)
		}
		if err := s.Coprocessor.AllowDecrypt(stub, certificationHandle, grantee); err != nil {
			return nil, nil, fmt.Errorf("failed to grant decrypt on certification to '%s': %w", grantee, err)
		}
	}
	return completionHandle, certificationHandle, nil
}
