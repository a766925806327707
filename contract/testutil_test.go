package contract

import (
	"sort"
	"strings"
	"time"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Test identities. The registry treats them as opaque strings; the x509
// shape just mirrors what Fabric client identities look like.
const (
	adminID    = "x509::CN=admin::OU=admin"
	trainerID  = "x509::CN=tess::OU=client"
	employeeID = "x509::CN=erin::OU=client"
	outsiderID = "x509::CN=oscar::OU=client"
)

var testEpoch = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

const compositeKeyNamespace = "\x00"

// fakeStub is an in-memory ChaincodeStubInterface covering the subset of the
// shim the registry touches. Unimplemented methods panic through the
// embedded nil interface, which is what we want in tests.
type fakeStub struct {
	shim.ChaincodeStubInterface
	state  map[string][]byte
	events map[string][]byte
	now    time.Time
}

func newFakeStub() *fakeStub {
	return &fakeStub{
		state:  map[string][]byte{},
		events: map[string][]byte{},
		now:    testEpoch,
	}
}

func (s *fakeStub) GetState(key string) ([]byte, error) {
	return s.state[key], nil
}

func (s *fakeStub) PutState(key string, value []byte) error {
	s.state[key] = value
	return nil
}

func (s *fakeStub) DelState(key string) error {
	delete(s.state, key)
	return nil
}

func (s *fakeStub) CreateCompositeKey(objectType string, attributes []string) (string, error) {
	key := compositeKeyNamespace + objectType + compositeKeyNamespace
	for _, attr := range attributes {
		key += attr + compositeKeyNamespace
	}
	return key, nil
}

func (s *fakeStub) GetStateByPartialCompositeKey(objectType string, attributes []string) (shim.StateQueryIteratorInterface, error) {
	prefix, _ := s.CreateCompositeKey(objectType, attributes)
	keys := []string{}
	for key := range s.state {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	results := make([]*queryresult.KV, 0, len(keys))
	for _, key := range keys {
		results = append(results, &queryresult.KV{Key: key, Value: s.state[key]})
	}
	return &fakeIterator{results: results}, nil
}

func (s *fakeStub) GetTxTimestamp() (*timestamppb.Timestamp, error) {
	return timestamppb.New(s.now), nil
}

func (s *fakeStub) GetTxID() string {
	return "testtx"
}

func (s *fakeStub) SetEvent(name string, payload []byte) error {
	s.events[name] = payload
	return nil
}

type fakeIterator struct {
	results []*queryresult.KV
	pos     int
}

func (it *fakeIterator) HasNext() bool {
	return it.pos < len(it.results)
}

func (it *fakeIterator) Next() (*queryresult.KV, error) {
	kv := it.results[it.pos]
	it.pos++
	return kv, nil
}

func (it *fakeIterator) Close() error {
	return nil
}

// fakeClientIdentity returns a fixed identity string.
type fakeClientIdentity struct {
	cid.ClientIdentity
	id string
}

func (c *fakeClientIdentity) GetID() (string, error) {
	return c.id, nil
}

func (c *fakeClientIdentity) GetMSPID() (string, error) {
	return "TestMSP", nil
}

// fakeContext binds a shared stub to a per-call client identity, so a test
// can replay transactions from different identities against one ledger.
type fakeContext struct {
	stub     *fakeStub
	identity *fakeClientIdentity
}

func (c *fakeContext) GetStub() shim.ChaincodeStubInterface {
	return c.stub
}

func (c *fakeContext) GetClientIdentity() cid.ClientIdentity {
	return c.identity
}

func ctxAs(stub *fakeStub, identity string) *fakeContext {
	return &fakeContext{stub: stub, identity: &fakeClientIdentity{id: identity}}
}

// newInitializedRegistry returns a contract wired to the ledger coprocessor
// with InitLedger already run by adminID.
func newInitializedRegistry() (*TrainingSmartContract, *fakeStub) {
	contract := NewSmartContract()
	stub := newFakeStub()
	if err := contract.InitLedger(ctxAs(stub, adminID)); err != nil {
		panic("test bootstrap failed: " + err.Error())
	}
	return contract, stub
}
