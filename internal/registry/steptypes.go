package registry

import (
	"fmt"
	"sync"
)

// StepTypeTable is the checked, total mapping from configuration variant
// names (e.g. "XGBoostTrainingConfig") to step-type tags (e.g.
// "XGBoostTraining"). Variants are registered at startup; lookups at use
// time never derive names heuristically.
type StepTypeTable struct {
	mutex    sync.RWMutex
	variants map[string]string
}

// NewStepTypeTable creates an empty table.
func NewStepTypeTable() *StepTypeTable {
	return &StepTypeTable{
		variants: make(map[string]string),
	}
}

// Register maps a configuration variant to its step type. Empty names and
// duplicate variants are rejected; each variant has exactly one entry.
func (t *StepTypeTable) Register(variant, stepType string) error {
	if variant == "" {
		return fmt.Errorf("step type table: empty config variant name")
	}
	if stepType == "" {
		return fmt.Errorf("step type table: empty step type for variant '%s'", variant)
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if existing, exists := t.variants[variant]; exists {
		return fmt.Errorf("step type table: variant '%s' already mapped to '%s'", variant, existing)
	}
	t.variants[variant] = stepType
	return nil
}

// StepType looks up the step type for a configuration variant.
func (t *StepTypeTable) StepType(variant string) (string, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	stepType, ok := t.variants[variant]
	return stepType, ok
}

// Variants returns the number of registered variants.
func (t *StepTypeTable) Variants() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return len(t.variants)
}
