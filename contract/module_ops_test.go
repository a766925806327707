package contract

import (
	"testing"

	"traintrace/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLedgerSeedsCatalog(t *testing.T) {
	contract := NewSmartContract()
	stub := newFakeStub()
	require.NoError(t, contract.InitLedger(ctxAs(stub, adminID)))

	for _, want := range []struct {
		id   string
		days int
	}{
		{"data-privacy", 30},
		{"gdpr-compliance", 45},
		{"security-awareness", 60},
		{"incident-response", 30},
	} {
		module, err := contract.GetTrainingModule(ctxAs(stub, outsiderID), want.id)
		require.NoError(t, err, want.id)
		assert.Equal(t, want.days, module.DurationDays, want.id)
		assert.True(t, module.Active, want.id)
		assert.Equal(t, adminID, module.CreatedBy, want.id)
	}
}

func TestInitLedgerRunsOnce(t *testing.T) {
	contract := NewSmartContract()
	stub := newFakeStub()
	require.NoError(t, contract.InitLedger(ctxAs(stub, adminID)))

	err := contract.InitLedger(ctxAs(stub, adminID))
	require.Error(t, err)
	err = contract.InitLedger(ctxAs(stub, outsiderID))
	require.Error(t, err, "a different identity cannot re-run initialization either")
}

func TestAddTrainingModuleRequiresAdmin(t *testing.T) {
	contract, stub := newInitializedRegistry()
	require.NoError(t, contract.AuthorizeTrainer(ctxAs(stub, adminID), trainerID))

	err := contract.AddTrainingModule(ctxAs(stub, trainerID), "hipaa-basics", "HIPAA Basics", "", 90)
	require.ErrorIs(t, err, model.ErrUnauthorized, "trainers may not manage the catalog")
}

func TestAddTrainingModuleInsertAndOverwrite(t *testing.T) {
	contract, stub := newInitializedRegistry()
	admin := ctxAs(stub, adminID)

	require.NoError(t, contract.AddTrainingModule(admin, "hipaa-basics", "HIPAA Basics", "US healthcare data handling", 90))
	module, err := contract.GetTrainingModule(ctxAs(stub, outsiderID), "hipaa-basics")
	require.NoError(t, err)
	assert.Equal(t, 90, module.DurationDays)

	// Re-adding the same key overwrites the whole definition.
	require.NoError(t, contract.AddTrainingModule(admin, "hipaa-basics", "HIPAA Refresher", "", 15))
	module, err = contract.GetTrainingModule(ctxAs(stub, outsiderID), "hipaa-basics")
	require.NoError(t, err)
	assert.Equal(t, "HIPAA Refresher", module.Name)
	assert.Equal(t, 15, module.DurationDays)
	assert.True(t, module.Active)
}

func TestAddTrainingModuleRejectsBadInput(t *testing.T) {
	contract, stub := newInitializedRegistry()
	admin := ctxAs(stub, adminID)

	require.Error(t, contract.AddTrainingModule(admin, "", "No Key", "", 30))
	require.Error(t, contract.AddTrainingModule(admin, "no-name", "", "", 30))
	require.Error(t, contract.AddTrainingModule(admin, "bad-duration", "Bad Duration", "", 0))
}

func TestGetActiveTrainingModulesIsFrozenCatalog(t *testing.T) {
	contract, stub := newInitializedRegistry()
	admin := ctxAs(stub, adminID)

	modules, err := contract.GetActiveTrainingModules(ctxAs(stub, outsiderID))
	require.NoError(t, err)
	require.Len(t, modules, 4)

	// Catalog additions do not show up in this read path.
	require.NoError(t, contract.AddTrainingModule(admin, "hipaa-basics", "HIPAA Basics", "", 90))
	modules, err = contract.GetActiveTrainingModules(ctxAs(stub, outsiderID))
	require.NoError(t, err)
	require.Len(t, modules, 4)
	for _, module := range modules {
		assert.NotEqual(t, "hipaa-basics", module.ID)
	}

	// But the added module is live for keyed reads and record creation.
	_, err = contract.GetTrainingModule(ctxAs(stub, outsiderID), "hipaa-basics")
	require.NoError(t, err)
	_, err = contract.CreateTrainingRecord(admin, employeeID, "Erin Example", "hipaa-basics")
	require.NoError(t, err)
}
