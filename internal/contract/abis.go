package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Builtin describes a contract interface whose ABI is embedded in the binary.
// Each interface registers itself via init() in its own <name>_abi.go file.
type Builtin struct {
	ID          string  // machine key, e.g. "erc20", "staking"
	Name        string  // human label
	Description string  // one-line summary shown in `byfin contracts`
	ABI         abi.ABI // parsed ABI, ready to pack and unpack
}

var builtinRegistry = map[string]Builtin{}

// registerBuiltin parses abiJSON and adds it to the registry. It panics on a
// malformed ABI, which can only happen at development time.
func registerBuiltin(id, name, description, abiJSON string) *abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(fmt.Sprintf("contract: parsing %s ABI: %v", id, err))
	}
	builtinRegistry[id] = Builtin{ID: id, Name: name, Description: description, ABI: parsed}
	return &parsed
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (Builtin, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []Builtin {
	out := make([]Builtin, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WriteMethods returns the state-changing methods of an ABI sorted by name.
func WriteMethods(a *abi.ABI) []abi.Method {
	var out []abi.Method
	for _, m := range a.Methods {
		if !m.IsConstant() {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MethodByData finds the built-in method whose selector prefixes data.
func MethodByData(data []byte) (Builtin, *abi.Method, bool) {
	if len(data) < 4 {
		return Builtin{}, nil, false
	}
	for _, b := range AllBuiltins() {
		if m, err := b.ABI.MethodById(data[:4]); err == nil {
			return b, m, true
		}
	}
	return Builtin{}, nil, false
}
