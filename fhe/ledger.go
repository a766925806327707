package fhe

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("traintrace.fhe")

// Object types for the coprocessor's own ledger namespace.
const (
	cipherObjectType  = "FHECipher" // handle (hex) -> ciphertext
	grantObjectType   = "FHEGrant"  // handle (hex), principal -> "true"
	counterObjectType = "FHEState"  // "counter" -> next handle ordinal
)

// LedgerCoprocessor is the in-platform coprocessor implementation. It keeps
// the cipher store and the decrypt-grant table in its own composite-key
// namespace and allocates handles from a ledger-held counter, so handle
// assignment is serialized by transaction ordering like every other write.
type LedgerCoprocessor struct{}

// NewLedgerCoprocessor returns a coprocessor backed by the chaincode ledger.
func NewLedgerCoprocessor() *LedgerCoprocessor {
	return &LedgerCoprocessor{}
}

func cipherKey(stub shim.ChaincodeStubInterface, handle Handle) (string, error) {
	return stub.CreateCompositeKey(cipherObjectType, []string{hex.EncodeToString(handle)})
}

func grantKey(stub shim.ChaincodeStubInterface, handle Handle, principal string) (string, error) {
	return stub.CreateCompositeKey(grantObjectType, []string{hex.EncodeToString(handle), principal})
}

func (c *LedgerCoprocessor) nextHandle(stub shim.ChaincodeStubInterface) (Handle, error) {
	counterKey, err := stub.CreateCompositeKey(counterObjectType, []string{"counter"})
	if err != nil {
		return nil, fmt.Errorf("failed to create handle counter key: %w", err)
	}
	var ordinal uint64
	counterBytes, err := stub.GetState(counterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read handle counter: %w", err)
	}
	if counterBytes != nil {
		ordinal, err = strconv.ParseUint(string(counterBytes), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt handle counter value '%s': %w", string(counterBytes), err)
		}
	}
	if err := stub.PutState(counterKey, []byte(strconv.FormatUint(ordinal+1, 10))); err != nil {
		return nil, fmt.Errorf("failed to advance handle counter: %w", err)
	}

	var ordBytes [8]byte
	binary.BigEndian.PutUint64(ordBytes[:], ordinal)
	sum := sha256.Sum256(append([]byte("traintrace.fhe.handle:"), ordBytes[:]...))
	return Handle(sum[:]), nil
}

// EncryptBool stores the ciphertext for value and returns a fresh handle.
func (c *LedgerCoprocessor) EncryptBool(stub shim.ChaincodeStubInterface, value bool) (Handle, error) {
	handle, err := c.nextHandle(stub)
	if err != nil {
		return nil, fmt.Errorf("EncryptBool: %w", err)
	}
	key, err := cipherKey(stub, handle)
	if err != nil {
		return nil, fmt.Errorf("EncryptBool: failed to create cipher key: %w", err)
	}
	ciphertext := []byte{0}
	if value {
		ciphertext[0] = 1
	}
	if err := stub.PutState(key, ciphertext); err != nil {
		return nil, fmt.Errorf("EncryptBool: failed to store ciphertext: %w", err)
	}
	logger.Debugf("Encrypted boolean under handle %s", hex.EncodeToString(handle))
	return handle, nil
}

// AllowDecrypt grants principal decrypt permission on handle. Repeating a
// grant is a no-op; grants are never revoked.
func (c *LedgerCoprocessor) AllowDecrypt(stub shim.ChaincodeStubInterface, handle Handle, principal string) error {
	if len(handle) == 0 {
		return errors.New("AllowDecrypt: handle cannot be empty")
	}
	if principal == "" {
		return errors.New("AllowDecrypt: principal cannot be empty")
	}
	key, err := cipherKey(stub, handle)
	if err != nil {
		return fmt.Errorf("AllowDecrypt: failed to create cipher key: %w", err)
	}
	ciphertext, err := stub.GetState(key)
	if err != nil {
		return fmt.Errorf("AllowDecrypt: failed to look up handle: %w", err)
	}
	if ciphertext == nil {
		return fmt.Errorf("AllowDecrypt: unknown handle %s", hex.EncodeToString(handle))
	}
	gk, err := grantKey(stub, handle, principal)
	if err != nil {
		return fmt.Errorf("AllowDecrypt: failed to create grant key: %w", err)
	}
	if err := stub.PutState(gk, []byte("true")); err != nil {
		return fmt.Errorf("AllowDecrypt: failed to store grant for '%s': %w", principal, err)
	}
	logger.Debugf("Granted decrypt permission on %s to '%s'", hex.EncodeToString(handle), principal)
	return nil
}

// Decrypt returns the plaintext behind handle for a principal holding a
// decrypt grant. The registry never calls this; it exists for clients
// exercising their granted permission.
func (c *LedgerCoprocessor) Decrypt(stub shim.ChaincodeStubInterface, handle Handle, principal string) (bool, error) {
	gk, err := grantKey(stub, handle, principal)
	if err != nil {
		return false, fmt.Errorf("Decrypt: failed to create grant key: %w", err)
	}
	grant, err := stub.GetState(gk)
	if err != nil {
		return false, fmt.Errorf("Decrypt: failed to look up grant: %w", err)
	}
	if grant == nil {
		return false, fmt.Errorf("Decrypt: principal '%s' has no decrypt permission on %s", principal, hex.EncodeToString(handle))
	}
	key, err := cipherKey(stub, handle)
	if err != nil {
		return false, fmt.Errorf("Decrypt: failed to create cipher key: %w", err)
	}
	ciphertext, err := stub.GetState(key)
	if err != nil {
		return false, fmt.Errorf("Decrypt: failed to read ciphertext: %w", err)
	}
	if ciphertext == nil {
		return false, fmt.Errorf("Decrypt: unknown handle %s", hex.EncodeToString(handle))
	}
	return len(ciphertext) == 1 && ciphertext[0] == 1, nil
}
