// internal/litwire/condition.go

// Package litwire maps access-control trees to and from the unified
// condition wire format consumed by the external decryption verifier.
//
// The wire shape is a heterogenous JSON array: leaf check objects, bare
// operator markers ({"operator": "and"}), and sub-arrays expressing nested
// groups. Condition models all three with custom JSON marshaling; quantities
// are decimal strings end to end so arbitrary-precision values survive the
// trip.
package litwire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ReturnValueTest is the comparator applied to a check's result.
type ReturnValueTest struct {
	Key        string `json:"key,omitempty"`
	Comparator string `json:"comparator"`
	Value      string `json:"value"`
}

// ABIParam is one input or output of a contract function signature.
type ABIParam struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// FunctionABI describes the contract function an evmContract check calls.
type FunctionABI struct {
	Inputs          []ABIParam `json:"inputs"`
	Name            string     `json:"name"`
	Outputs         []ABIParam `json:"outputs"`
	StateMutability string     `json:"stateMutability"`
	Type            string     `json:"type"`
}

// Condition is one element of a unified condition array: exactly one of a
// nested group (Sub non-nil), an operator marker (Operator non-empty), or a
// leaf check (everything else, discriminated by ConditionType).
type Condition struct {
	// Operator marker.
	Operator string

	// Leaf check fields.
	ConditionType        string
	ContractAddress      string
	StandardContractType string
	Chain                string
	Method               string
	Parameters           []string
	FunctionName         string
	FunctionParams       []string
	FunctionABI          *FunctionABI
	ReturnValueTest      *ReturnValueTest

	// Nested group.
	Sub Conditions
}

// Conditions is a unified condition array.
type Conditions []Condition

// Leaf check condition types.
const (
	ConditionEVMBasic    = "evmBasic"
	ConditionEVMContract = "evmContract"
)

// SelfParameter is the environment variable a lit-action self check
// asserts against; the verifier substitutes its own content address.
const SelfParameter = ":currentActionIpfsId"

// UserAddressParameter is substituted with the requesting wallet.
const UserAddressParameter = ":userAddress"

// IsOperator reports whether the condition is a bare operator marker.
func (c Condition) IsOperator() bool { return c.Operator != "" }

// IsGroup reports whether the condition is a nested sub-array.
func (c Condition) IsGroup() bool { return c.Sub != nil }

// IsSelfCheck reports whether the condition is the special content-address
// check pinning evaluation to the authorized execution environment.
func (c Condition) IsSelfCheck() bool {
	for _, p := range c.Parameters {
		if p == SelfParameter {
			return true
		}
	}
	return false
}

type operatorJSON struct {
	Operator string `json:"operator"`
}

// basicJSON keeps the empty contractAddress/standardContractType keys the
// verifier expects on evmBasic checks, so omitempty is off for them.
type basicJSON struct {
	ConditionType        string           `json:"conditionType"`
	ContractAddress      string           `json:"contractAddress"`
	StandardContractType string           `json:"standardContractType"`
	Chain                string           `json:"chain"`
	Method               string           `json:"method"`
	Parameters           []string         `json:"parameters"`
	ReturnValueTest      *ReturnValueTest `json:"returnValueTest"`
}

type contractJSON struct {
	ConditionType   string           `json:"conditionType"`
	ContractAddress string           `json:"contractAddress"`
	FunctionName    string           `json:"functionName"`
	FunctionParams  []string         `json:"functionParams"`
	FunctionABI     *FunctionABI     `json:"functionAbi"`
	Chain           string           `json:"chain"`
	ReturnValueTest *ReturnValueTest `json:"returnValueTest"`
}

// MarshalJSON writes the variant's wire shape: a sub-array for groups, a
// bare operator object for markers, a leaf object otherwise.
func (c Condition) MarshalJSON() ([]byte, error) {
	switch {
	case c.IsGroup():
		return json.Marshal(c.Sub)
	case c.IsOperator():
		return json.Marshal(operatorJSON{Operator: c.Operator})
	case c.ConditionType == ConditionEVMContract:
		return json.Marshal(contractJSON{
			ConditionType:   c.ConditionType,
			ContractAddress: c.ContractAddress,
			FunctionName:    c.FunctionName,
			FunctionParams:  c.FunctionParams,
			FunctionABI:     c.FunctionABI,
			Chain:           c.Chain,
			ReturnValueTest: c.ReturnValueTest,
		})
	default:
		return json.Marshal(basicJSON{
			ConditionType:        c.ConditionType,
			ContractAddress:      c.ContractAddress,
			StandardContractType: c.StandardContractType,
			Chain:                c.Chain,
			Method:               c.Method,
			Parameters:           c.Parameters,
			ReturnValueTest:      c.ReturnValueTest,
		})
	}
}

// UnmarshalJSON reads either a sub-array or an object. Objects with an
// "operator" key become markers; everything else is a leaf check.
func (c *Condition) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return fmt.Errorf("empty condition")
	}

	if trimmed[0] == '[' {
		var sub Conditions
		if err := json.Unmarshal(data, &sub); err != nil {
			return err
		}
		if sub == nil {
			sub = Conditions{}
		}
		*c = Condition{Sub: sub}
		return nil
	}

	var leaf struct {
		Operator             string           `json:"operator"`
		ConditionType        string           `json:"conditionType"`
		ContractAddress      string           `json:"contractAddress"`
		StandardContractType string           `json:"standardContractType"`
		Chain                string           `json:"chain"`
		Method               string           `json:"method"`
		Parameters           []string         `json:"parameters"`
		FunctionName         string           `json:"functionName"`
		FunctionParams       []string         `json:"functionParams"`
		FunctionABI          *FunctionABI     `json:"functionAbi"`
		ReturnValueTest      *ReturnValueTest `json:"returnValueTest"`
	}
	if err := json.Unmarshal(data, &leaf); err != nil {
		return err
	}

	*c = Condition{
		Operator:             leaf.Operator,
		ConditionType:        leaf.ConditionType,
		ContractAddress:      leaf.ContractAddress,
		StandardContractType: leaf.StandardContractType,
		Chain:                leaf.Chain,
		Method:               leaf.Method,
		Parameters:           leaf.Parameters,
		FunctionName:         leaf.FunctionName,
		FunctionParams:       leaf.FunctionParams,
		FunctionABI:          leaf.FunctionABI,
		ReturnValueTest:      leaf.ReturnValueTest,
	}
	return nil
}
