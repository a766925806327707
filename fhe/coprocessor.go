// Package fhe models the external homomorphic-encryption coprocessor the
// registry depends on. The contract only ever stores the opaque handles the
// coprocessor returns and asks it to grant decrypt permissions; no plaintext
// crosses back into contract state after encryption.
package fhe

import "github.com/hyperledger/fabric-chaincode-go/shim"

// Handle is an opaque reference to an encrypted value held by the
// coprocessor. It is meaningless without the coprocessor's key material.
type Handle []byte

// Coprocessor is the capability the registry consumes. Implementations must
// be deterministic with respect to ledger state so that Fabric re-execution
// of a transaction yields identical writes.
type Coprocessor interface {
	// EncryptBool encrypts a plaintext boolean and returns the handle
	// referencing the ciphertext.
	EncryptBool(stub shim.ChaincodeStubInterface, value bool) (Handle, error)

	// AllowDecrypt grants principal permission to decrypt the value behind
	// handle. Grants are additive and are never revoked.
	AllowDecrypt(stub shim.ChaincodeStubInterface, handle Handle, principal string) error
}
