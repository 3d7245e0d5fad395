package litwire

import (
	"errors"
	"testing"

	"github.com/loop/accessctl/internal/types"
)

func validBasic() Condition {
	return Condition{
		ConditionType:   ConditionEVMBasic,
		ContractAddress: "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		Chain:           "base",
		Method:          "balanceOf",
		Parameters:      []string{UserAddressParameter},
		ReturnValueTest: &ReturnValueTest{Comparator: ">=", Value: "1"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		conds Conditions
		want  bool
	}{
		{
			name:  "empty top level",
			conds: Conditions{},
			want:  false,
		},
		{
			name:  "single basic check",
			conds: Conditions{validBasic()},
			want:  true,
		},
		{
			name: "self check without method",
			conds: Conditions{{
				ConditionType:   ConditionEVMBasic,
				Chain:           "baseSepolia",
				Parameters:      []string{SelfParameter},
				ReturnValueTest: &ReturnValueTest{Comparator: "=", Value: "QmCID"},
			}},
			want: true,
		},
		{
			name: "basic check missing method",
			conds: Conditions{{
				ConditionType:   ConditionEVMBasic,
				Chain:           "base",
				Parameters:      []string{UserAddressParameter},
				ReturnValueTest: &ReturnValueTest{Comparator: ">=", Value: "1"},
			}},
			want: false,
		},
		{
			name: "basic check missing return value test",
			conds: func() Conditions {
				c := validBasic()
				c.ReturnValueTest = nil
				return Conditions{c}
			}(),
			want: false,
		},
		{
			name:  "operator and",
			conds: Conditions{validBasic(), {Operator: "and"}, validBasic()},
			want:  true,
		},
		{
			name:  "operator unknown",
			conds: Conditions{validBasic(), {Operator: "nand"}, validBasic()},
			want:  false,
		},
		{
			name: "contract check complete",
			conds: Conditions{{
				ConditionType:   ConditionEVMContract,
				ContractAddress: "0x3Ff1bE07bC2b05e28fcbEFa46fA0a9aE6cAfcD73",
				FunctionName:    "hasPurchasedVideo",
				FunctionParams:  []string{UserAddressParameter, "1"},
				Chain:           "baseSepolia",
				ReturnValueTest: &ReturnValueTest{Comparator: "=", Value: "true"},
			}},
			want: true,
		},
		{
			name: "contract check missing function name",
			conds: Conditions{{
				ConditionType:   ConditionEVMContract,
				ContractAddress: "0x3Ff1bE07bC2b05e28fcbEFa46fA0a9aE6cAfcD73",
				FunctionParams:  []string{UserAddressParameter, "1"},
				Chain:           "baseSepolia",
				ReturnValueTest: &ReturnValueTest{Comparator: "=", Value: "true"},
			}},
			want: false,
		},
		{
			name:  "nested group valid",
			conds: Conditions{{Sub: Conditions{validBasic()}}},
			want:  true,
		},
		{
			name:  "nested group with invalid leaf",
			conds: Conditions{{Sub: Conditions{{ConditionType: "unknown"}}}},
			want:  false,
		},
		{
			name:  "empty nested group allowed",
			conds: Conditions{validBasic(), {Operator: "or"}, {Sub: Conditions{}}},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.conds); got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate_DepthLimit(t *testing.T) {
	conds := Conditions{validBasic()}
	for i := 0; i < types.MaxConditionDepth+1; i++ {
		conds = Conditions{{Sub: conds}}
	}

	if Validate(conds) {
		t.Errorf("Validate() = true for nesting beyond the depth limit")
	}
	if err := Check(conds); !errors.Is(err, types.ErrConditionsTooDeep) {
		t.Errorf("Check() error = %v, want ErrConditionsTooDeep", err)
	}
}

func TestCheck_ErrorKinds(t *testing.T) {
	if err := Check(Conditions{}); !errors.Is(err, types.ErrInvalidConditions) {
		t.Errorf("Check(empty) error = %v, want ErrInvalidConditions", err)
	}
	if err := Check(Conditions{validBasic()}); err != nil {
		t.Errorf("Check(valid) error = %v, want nil", err)
	}
}
