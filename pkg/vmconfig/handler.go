// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// Handler processes one parameter group through the reconciliation phases:
// validation, change detection, and config spec population. Handlers are
// single use; a new set is built for every reconciliation pass.
type Handler interface {
	// Name identifies the parameter group, e.g. "cpu" or "disk".
	Name() string

	// ChangeSet returns the handler's own change accumulator.
	ChangeSet() *ChangeSet

	// VerifyParameterConstraints validates parameter values and
	// combinations without touching live VM state beyond what the
	// parameters themselves reference.
	VerifyParameterConstraints() error

	// CompareLiveConfigWithDesiredConfig records every difference between
	// the live configuration and the desired one into the change set.
	CompareLiveConfigWithDesiredConfig() error

	// PopulateConfigSpec writes the handler's staged changes into the
	// config spec. Only called when the handler's change set reports
	// changes required.
	PopulateConfigSpec(configSpec *vimtypes.VirtualMachineConfigSpec)
}

// DeviceLinkedHandler is a Handler whose parameters describe hardware
// devices. During the live device walk each device is dispatched to the one
// handler that owns its kind.
type DeviceLinkedHandler interface {
	Handler

	// Kinds lists the device kinds this handler owns.
	Kinds() []DeviceKind

	// LinkVMDevice binds a live device to one of the handler's desired
	// devices. A non-nil returned device was not claimed by any desired
	// device and is a candidate for removal. A returned error aborts the
	// reconciliation.
	LinkVMDevice(dev vimtypes.BaseVirtualDevice) (vimtypes.BaseVirtualDevice, error)
}

// resourceAllocation builds the allocation settings shared by the CPU and
// memory handlers. A custom share count implies the custom shares level.
// Returns nil when no allocation parameter is set.
func resourceAllocation(shares *int32, level vimtypes.SharesLevel, limit, reservation *int64) *vimtypes.ResourceAllocationInfo {
	if shares == nil && level == "" && limit == nil && reservation == nil {
		return nil
	}

	alloc := &vimtypes.ResourceAllocationInfo{
		Limit:       limit,
		Reservation: reservation,
	}
	if shares != nil {
		alloc.Shares = &vimtypes.SharesInfo{
			Level:  vimtypes.SharesLevelCustom,
			Shares: *shares,
		}
	} else if level != "" {
		alloc.Shares = &vimtypes.SharesInfo{Level: level}
	}
	return alloc
}
