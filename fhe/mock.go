package fhe

import (
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/stretchr/testify/mock"
)

// MockCoprocessor mocks the Coprocessor interface
type MockCoprocessor struct {
	mock.Mock
}

// EncryptBool mocks the EncryptBool method
func (m *MockCoprocessor) EncryptBool(stub shim.ChaincodeStubInterface, value bool) (Handle, error) {
	args := m.Called(stub, value)
	return args.Get(0).(Handle), args.Error(1)
}

// AllowDecrypt mocks the AllowDecrypt method
func (m *MockCoprocessor) AllowDecrypt(stub shim.ChaincodeStubInterface, handle Handle, principal string) error {
	args := m.Called(stub, handle, principal)
	return args.Error(0)
}
