package notify

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/travigo/bustracker/pkg/ctdf"
)

// Filter decides from an expression whether a notification is delivered.
// The expression sees Type, Title, Message and BusID, for example
// `Type == "BusSearch" && Message contains "No buses"`.
type Filter struct {
	program *vm.Program
}

type filterEnvironment struct {
	Type    string
	Title   string
	Message string
	BusID   string
}

func NewFilter(expression string) (*Filter, error) {
	if expression == "" {
		return nil, nil
	}

	program, err := expr.Compile(expression, expr.Env(filterEnvironment{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile notification filter: %w", err)
	}

	return &Filter{program: program}, nil
}

func (f *Filter) Allows(notification ctdf.Notification) (bool, error) {
	if f == nil {
		return true, nil
	}

	output, err := expr.Run(f.program, filterEnvironment{
		Type:    string(notification.Type),
		Title:   notification.Title,
		Message: notification.Message,
		BusID:   notification.BusID,
	})
	if err != nil {
		return false, err
	}

	return output.(bool), nil
}
