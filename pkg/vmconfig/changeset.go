// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"github.com/vmware/govmomi/vim25/mo"
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// Outcome is the result of comparing one desired value against the live
// configuration. The power cycle gate is an explicit outcome rather than an
// error so callers with a hot add or hot remove fallback can decide for
// themselves whether the change is allowed in place.
type Outcome int

const (
	OutcomeInSync Outcome = iota
	OutcomeChanged
	OutcomeRequiresPowerCycle
)

func (o Outcome) String() string {
	switch o {
	case OutcomeChanged:
		return "changed"
	case OutcomeRequiresPowerCycle:
		return "requires-power-cycle"
	default:
		return "in-sync"
	}
}

// ValueChange records the old and new value of one changed parameter so the
// caller can render a precise change report.
type ValueChange struct {
	Old any
	New any
}

// ChangeSet accumulates, for one handler or for the whole reconciliation,
// which parameters differ from the live configuration and which devices must
// be added, updated, or removed. A device appears in at most one of the four
// lists per reconciliation pass.
type ChangeSet struct {
	vm              *mo.VirtualMachine
	allowPowerCycle bool

	// PowerCycleRequired is set when a power sensitive change was accepted
	// because the caller opted into power cycling.
	PowerCycleRequired bool

	// Changed maps parameter paths, e.g. "cpu.cores", to their old and new
	// values.
	Changed map[string]ValueChange

	ToAdd    []Device
	ToUpdate []Device
	InSync   []Device

	// ToRemove holds live devices no desired device claimed. Removal
	// candidates are raw platform devices, not desired device objects.
	ToRemove []vimtypes.BaseVirtualDevice
}

// NewChangeSet returns an empty change set for the given live VM. A nil vm
// means the machine is being created, in which case changes are always
// required and per-value comparison is skipped.
func NewChangeSet(vm *mo.VirtualMachine, allowPowerCycle bool) *ChangeSet {
	return &ChangeSet{
		vm:              vm,
		allowPowerCycle: allowPowerCycle,
		Changed:         map[string]ValueChange{},
	}
}

// VM returns the live VM this change set compares against, or nil during
// creation.
func (cs *ChangeSet) VM() *mo.VirtualMachine {
	return cs.vm
}

// AllowPowerCycle reports whether the caller pre-authorized power cycling.
func (cs *ChangeSet) AllowPowerCycle() bool {
	return cs.allowPowerCycle
}

// PoweredOn reports whether the live VM is currently powered on.
func (cs *ChangeSet) PoweredOn() bool {
	return cs.vm != nil && cs.vm.Runtime.PowerState == vimtypes.VirtualMachinePowerStatePoweredOn
}

// Required reports whether this change set demands a reconfigure call.
// Creation always does.
func (cs *ChangeSet) Required() bool {
	if cs.vm == nil {
		return true
	}
	return len(cs.Changed) > 0 ||
		len(cs.ToAdd) > 0 ||
		len(cs.ToUpdate) > 0 ||
		len(cs.ToRemove) > 0
}

// Propagate merges another change set into this one. Flags are OR'd, the
// changed parameter map and the device lists are unioned.
func (cs *ChangeSet) Propagate(other *ChangeSet) {
	for k, v := range other.Changed {
		cs.Changed[k] = v
	}
	cs.ToAdd = append(cs.ToAdd, other.ToAdd...)
	cs.ToUpdate = append(cs.ToUpdate, other.ToUpdate...)
	cs.InSync = append(cs.InSync, other.InSync...)
	cs.ToRemove = append(cs.ToRemove, other.ToRemove...)
	cs.PowerCycleRequired = cs.PowerCycleRequired || other.PowerCycleRequired
}

// Compare records a change for the parameter when the desired value differs
// from the live value, applying the power cycle policy for power sensitive
// parameters. A nil desired value means the caller has no opinion and never
// flags a change. During creation nothing is recorded; Required is already
// true and handlers populate every declared value.
func Compare[T comparable](cs *ChangeSet, parameter string, desired, live *T, powerSensitive bool) error {
	if Check(cs, parameter, desired, live, powerSensitive) == OutcomeRequiresPowerCycle {
		if !cs.allowPowerCycle {
			return PowerCycleRequiredError{Parameter: parameter}
		}
		cs.PowerCycleRequired = true
		Record(cs, parameter, live, desired)
	}
	return nil
}

// Check evaluates a single desired-vs-live comparison without applying the
// power cycle policy, for callers that can fall back to a hot add or hot
// remove path before deciding. A Changed outcome is recorded; the
// RequiresPowerCycle outcome is left to the caller to record or reject.
func Check[T comparable](cs *ChangeSet, parameter string, desired, live *T, powerSensitive bool) Outcome {
	if cs.vm == nil || desired == nil {
		return OutcomeInSync
	}
	if live != nil && *live == *desired {
		return OutcomeInSync
	}
	if powerSensitive && cs.PoweredOn() {
		return OutcomeRequiresPowerCycle
	}
	Record(cs, parameter, live, desired)
	return OutcomeChanged
}

// Record stores the old and new value for a changed parameter.
func Record[T any](cs *ChangeSet, parameter string, old, new *T) {
	cs.Changed[parameter] = ValueChange{Old: derefAny(old), New: derefAny(new)}
}

func derefAny[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
