package contract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"traintrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Core Helper Methods (used across multiple operations) ---

// getCurrentTxTimestamp retrieves the current transaction timestamp from the stub.
func (s *TrainingSmartContract) getCurrentTxTimestamp(ctx contractapi.TransactionContextInterface) (time.Time, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime(), nil
}

func (s *TrainingSmartContract) createModuleCompositeKey(ctx contractapi.TransactionContextInterface, moduleID string) (string, error) {
	return ctx.GetStub().CreateCompositeKey(moduleObjectType, []string{moduleID})
}

func (s *TrainingSmartContract) createRecordCompositeKey(ctx contractapi.TransactionContextInterface, recordID uint64) (string, error) {
	return ctx.GetStub().CreateCompositeKey(recordObjectType, []string{strconv.FormatUint(recordID, 10)})
}

func (s *TrainingSmartContract) createEmployeeIndexKey(ctx contractapi.TransactionContextInterface, employee string) (string, error) {
	return ctx.GetStub().CreateCompositeKey(employeeIndexObjectType, []string{employee})
}

// --- Validation Helper Functions ---

func (s *TrainingSmartContract) validateRequiredString(input, field string, max int) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if len(input) > max {
		return fmt.Errorf("%s exceeds max length %d", field, max)
	}
	return nil
}

func (s *TrainingSmartContract) validateOptionalString(input, field string, max int) error {
	if input != "" && len(input) > max {
		return fmt.Errorf("%s exceeds max length %d", field, max)
	}
	return nil
}

// --- Module State Helpers ---

func (s *TrainingSmartContract) putModule(ctx contractapi.TransactionContextInterface, module *model.TrainingModule) error {
	moduleKey, err := s.createModuleCompositeKey(ctx, module.ID)
	if err != nil {
		return fmt.Errorf("failed to create composite key for module '%s': %w", module.ID, err)
	}
	moduleBytes, err := json.Marshal(module)
	if err != nil {
		return fmt.Errorf("failed to marshal module '%s': %w", module.ID, err)
	}
	if err := ctx.GetStub().PutState(moduleKey, moduleBytes); err != nil {
		return fmt.Errorf("failed to save module '%s' to ledger: %w", module.ID, err)
	}
	return nil
}

// getModuleByID retrieves a module from the live catalog. A nil module with a
// nil error means the key is unknown.
func (s *TrainingSmartContract) getModuleByID(ctx contractapi.TransactionContextInterface, moduleID string) (*model.TrainingModule, error) {
	moduleKey, err := s.createModuleCompositeKey(ctx, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to create composite key for module '%s': %w", moduleID, err)
	}
	moduleBytes, err := ctx.GetStub().GetState(moduleKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read module '%s' from ledger: %w", moduleID, err)
	}
	if moduleBytes == nil {
		return nil, nil
	}
	var module model.TrainingModule
	if err := json.Unmarshal(moduleBytes, &module); err != nil {
		return nil, fmt.Errorf("failed to unmarshal module '%s' data: %w", moduleID, err)
	}
	return &module, nil
}

// --- Record State Helpers ---

func (s *TrainingSmartContract) putRecord(ctx contractapi.TransactionContextInterface, record *model.TrainingRecord) error {
	recordKey, err := s.createRecordCompositeKey(ctx, record.ID)
	if err != nil {
		return fmt.Errorf("failed to create composite key for record %d: %w", record.ID, err)
	}
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record %d: %w", record.ID, err)
	}
	if err := ctx.GetStub().PutState(recordKey, recordBytes); err != nil {
		return fmt.Errorf("failed to save record %d to ledger: %w", record.ID, err)
	}
	return nil
}

// getRecordByID retrieves a record. A nil record with a nil error means the
// id has never been allocated.
func (s *TrainingSmartContract) getRecordByID(ctx contractapi.TransactionContextInterface, recordID uint64) (*model.TrainingRecord, error) {
	recordKey, err := s.createRecordCompositeKey(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to create composite key for record %d: %w", recordID, err)
	}
	recordBytes, err := ctx.GetStub().GetState(recordKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %d from ledger: %w", recordID, err)
	}
	if recordBytes == nil {
		return nil, nil
	}
	var record model.TrainingRecord
	if err := json.Unmarshal(recordBytes, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %d data: %w", recordID, err)
	}
	return &record, nil
}

// --- Record Counter ---

func (s *TrainingSmartContract) createRecordCounterKey(ctx contractapi.TransactionContextInterface) (string, error) {
	return ctx.GetStub().CreateCompositeKey(configObjectType, []string{"recordCounter"})
}

// readRecordCounter returns the next record id to allocate.
func (s *TrainingSmartContract) readRecordCounter(ctx contractapi.TransactionContextInterface) (uint64, error) {
	counterKey, err := s.createRecordCounterKey(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to create record counter key: %w", err)
	}
	counterBytes, err := ctx.GetStub().GetState(counterKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read record counter: %w", err)
	}
	if counterBytes == nil {
		return 0, nil
	}
	counter, err := strconv.ParseUint(string(counterBytes), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt record counter value '%s': %w", string(counterBytes), err)
	}
	return counter, nil
}

func (s *TrainingSmartContract) writeRecordCounter(ctx contractapi.TransactionContextInterface, next uint64) error {
	counterKey, err := s.createRecordCounterKey(ctx)
	if err != nil {
		return fmt.Errorf("failed to create record counter key: %w", err)
	}
	if err := ctx.GetStub().PutState(counterKey, []byte(strconv.FormatUint(next, 10))); err != nil {
		return fmt.Errorf("failed to save record counter: %w", err)
	}
	return nil
}

// --- Per-Employee Record Index ---

// readEmployeeIndex returns the ordered record-id sequence for employee.
func (s *TrainingSmartContract) readEmployeeIndex(ctx contractapi.TransactionContextInterface, employee string) ([]uint64, error) {
	indexKey, err := s.createEmployeeIndexKey(ctx, employee)
	if err != nil {
		return nil, fmt.Errorf("failed to create employee index key for '%s': %w", employee, err)
	}
	indexBytes, err := ctx.GetStub().GetState(indexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read employee index for '%s': %w", employee, err)
	}
	ids := []uint64{}
	if indexBytes == nil {
		return ids, nil
	}
	if err := json.Unmarshal(indexBytes, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal employee index for '%s': %w", employee, err)
	}
	return ids, nil
}

// appendEmployeeIndex appends recordID to employee's sequence. Duplicates are
// allowed; the index is strictly append-only.
func (s *TrainingSmartContract) appendEmployeeIndex(ctx contractapi.TransactionContextInterface, employee string, recordID uint64) error {
	ids, err := s.readEmployeeIndex(ctx, employee)
	if err != nil {
		return err
	}
	ids = append(ids, recordID)
	indexBytes, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal employee index for '%s': %w", employee, err)
	}
	indexKey, err := s.createEmployeeIndexKey(ctx, employee)
	if err != nil {
		return fmt.Errorf("failed to create employee index key for '%s': %w", employee, err)
	}
	if err := ctx.GetStub().PutState(indexKey, indexBytes); err != nil {
		return fmt.Errorf("failed to save employee index for '%s': %w", employee, err)
	}
	return nil
}

// emitRegistryEvent sends a chaincode event with a JSON payload.
func (s *TrainingSmartContract) emitRegistryEvent(ctx contractapi.TransactionContextInterface, eventName string, payload map[string]interface{}) {
	eventBytes, err := json.Marshal(payload)
	if err != nil {
		logger.Warningf("emitRegistryEvent: Failed to marshal payload for event '%s': %v", eventName, err)
		return
	}
	if err := ctx.GetStub().SetEvent(eventName, eventBytes); err != nil {
		logger.Warningf("emitRegistryEvent: Failed to set event '%s': %v", eventName, err)
	}
}
