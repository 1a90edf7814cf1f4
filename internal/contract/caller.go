package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ReadBackend is the subset of the JSON-RPC client a Caller needs.
type ReadBackend interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// Caller calls read-only (view/pure) contract functions.
type Caller struct {
	backend ReadBackend
}

// NewCaller creates a Caller.
func NewCaller(backend ReadBackend) *Caller {
	return &Caller{backend: backend}
}

// Call calls a read function on a contract and returns the decoded outputs.
func (c *Caller) Call(ctx context.Context, contractAddr common.Address, iface *abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	m, ok := iface.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if !m.IsConstant() {
		return nil, fmt.Errorf("function %q is not a read function (stateMutability: %s)", method, m.StateMutability)
	}

	calldata, err := iface.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}

	result, err := c.backend.CallContract(ctx, contractAddr, calldata)
	if err != nil {
		return nil, fmt.Errorf("contract call %s failed: %w", method, err)
	}

	decoded, err := iface.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", method, err)
	}
	return decoded, nil
}

// CallInto calls a read function and copies its outputs into out, which must
// be a pointer to a struct whose fields match the output names.
func (c *Caller) CallInto(ctx context.Context, out interface{}, contractAddr common.Address, iface *abi.ABI, method string, args ...interface{}) error {
	values, err := c.Call(ctx, contractAddr, iface, method, args...)
	if err != nil {
		return err
	}
	if err := iface.Methods[method].Outputs.Copy(out, values); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}
