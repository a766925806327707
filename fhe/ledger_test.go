package fhe

import (
	"strings"
	"testing"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStub is the minimal slice of the chaincode stub the coprocessor touches.
type memStub struct {
	shim.ChaincodeStubInterface
	state map[string][]byte
}

func newMemStub() *memStub {
	return &memStub{state: make(map[string][]byte)}
}

func (s *memStub) GetState(key string) ([]byte, error) {
	return s.state[key], nil
}

func (s *memStub) PutState(key string, value []byte) error {
	s.state[key] = value
	return nil
}

func (s *memStub) CreateCompositeKey(objectType string, attributes []string) (string, error) {
	return "\x00" + objectType + "\x00" + strings.Join(attributes, "\x00") + "\x00", nil
}

func TestEncryptBoolHandlesAreDistinct(t *testing.T) {
	stub := newMemStub()
	cop := NewLedgerCoprocessor()

	first, err := cop.EncryptBool(stub, true)
	require.NoError(t, err)
	second, err := cop.EncryptBool(stub, true)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second, "same plaintext must not share a handle")
}

func TestDecryptRequiresGrant(t *testing.T) {
	stub := newMemStub()
	cop := NewLedgerCoprocessor()

	handle, err := cop.EncryptBool(stub, true)
	require.NoError(t, err)

	_, err = cop.Decrypt(stub, handle, "alice")
	require.Error(t, err, "no grant yet")

	require.NoError(t, cop.AllowDecrypt(stub, handle, "alice"))
	value, err := cop.Decrypt(stub, handle, "alice")
	require.NoError(t, err)
	assert.True(t, value)

	// Alice's grant does not cover Bob.
	_, err = cop.Decrypt(stub, handle, "bob")
	require.Error(t, err)
}

func TestGrantsAreAdditiveAndRepeatable(t *testing.T) {
	stub := newMemStub()
	cop := NewLedgerCoprocessor()

	handle, err := cop.EncryptBool(stub, false)
	require.NoError(t, err)

	require.NoError(t, cop.AllowDecrypt(stub, handle, "alice"))
	require.NoError(t, cop.AllowDecrypt(stub, handle, "alice"))
	require.NoError(t, cop.AllowDecrypt(stub, handle, "bob"))

	for _, principal := range []string{"alice", "bob"} {
		value, err := cop.Decrypt(stub, handle, principal)
		require.NoError(t, err, principal)
		assert.False(t, value)
	}
}

func TestAllowDecryptValidation(t *testing.T) {
	stub := newMemStub()
	cop := NewLedgerCoprocessor()

	handle, err := cop.EncryptBool(stub, true)
	require.NoError(t, err)

	assert.Error(t, cop.AllowDecrypt(stub, nil, "alice"))
	assert.Error(t, cop.AllowDecrypt(stub, handle, ""))
	assert.Error(t, cop.AllowDecrypt(stub, Handle("no-such-handle"), "alice"))
}
