// internal/litwire/validate.go
package litwire

import (
	"github.com/loop/accessctl/internal/types"
)

/*
 * Structural validation of externally supplied condition arrays.
 *
 * Valid elements are: a nested array (validated recursively), an operator
 * marker with operator in {and, or}, the special content-address self
 * check, a structurally complete evmBasic check, or a structurally
 * complete evmContract check. Anything else - and any nesting beyond
 * MaxConditionDepth - fails the whole array.
 */

// Validate reports whether conds is a well-formed unified condition array.
func Validate(conds Conditions) bool {
	return Check(conds) == nil
}

// Check validates conds, distinguishing over-deep nesting from other
// structural failures. An empty top-level array is invalid; there would be
// nothing to verify.
func Check(conds Conditions) error {
	if len(conds) == 0 {
		return types.ErrInvalidConditions
	}
	return checkAll(conds, 0)
}

func checkAll(conds Conditions, depth int) error {
	if depth > types.MaxConditionDepth {
		return types.ErrConditionsTooDeep
	}
	for _, c := range conds {
		if err := checkCondition(c, depth); err != nil {
			return err
		}
	}
	return nil
}

func checkCondition(c Condition, depth int) error {
	switch {
	case c.IsGroup():
		return checkAll(c.Sub, depth+1)

	case c.IsOperator():
		if c.Operator != string(types.OpAnd) && c.Operator != string(types.OpOr) {
			return types.ErrInvalidConditions
		}
		return nil

	case c.IsSelfCheck():
		if c.ReturnValueTest == nil ||
			c.ReturnValueTest.Comparator == "" ||
			c.ReturnValueTest.Value == "" {
			return types.ErrInvalidConditions
		}
		return nil

	case c.ConditionType == ConditionEVMBasic:
		if c.Chain == "" ||
			c.Method == "" ||
			len(c.Parameters) == 0 ||
			c.ReturnValueTest == nil ||
			c.ReturnValueTest.Comparator == "" ||
			c.ReturnValueTest.Value == "" {
			return types.ErrInvalidConditions
		}
		return nil

	case c.ConditionType == ConditionEVMContract:
		if c.Chain == "" ||
			c.ContractAddress == "" ||
			c.FunctionName == "" ||
			len(c.FunctionParams) == 0 ||
			c.ReturnValueTest == nil ||
			c.ReturnValueTest.Comparator == "" ||
			c.ReturnValueTest.Value == "" {
			return types.ErrInvalidConditions
		}
		return nil

	default:
		return types.ErrInvalidConditions
	}
}
