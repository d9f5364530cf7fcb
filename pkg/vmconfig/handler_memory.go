// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"

	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconfig/pkg/util/ptr"
)

type memoryHandler struct {
	params *MemoryParams
	cs     *ChangeSet
}

func newMemoryHandler(req *ConfigRequest, cs *ChangeSet) *memoryHandler {
	return &memoryHandler{
		params: req.Memory,
		cs:     cs,
	}
}

func (h *memoryHandler) Name() string {
	return "memory"
}

func (h *memoryHandler) ChangeSet() *ChangeSet {
	return h.cs
}

func (h *memoryHandler) VerifyParameterConstraints() error {
	if h.params == nil {
		if h.cs.VM() == nil {
			return ParameterError{
				Parameter: "memory",
				Message:   "the memory parameters are mandatory for VM creation",
			}
		}
		return nil
	}

	if err := h.verifySize(); err != nil {
		return err
	}
	return h.verifyReservation()
}

func (h *memoryHandler) verifySize() error {
	if h.cs.VM() == nil {
		if h.params.SizeMB == nil {
			return ParameterError{
				Parameter: "memory.size_mb",
				Message:   "the memory.size_mb attribute is mandatory for VM creation",
			}
		}
		return nil
	}

	current := int64(h.cs.VM().Config.Hardware.MemoryMB)
	if h.params.SizeMB != nil && *h.params.SizeMB < current {
		return ParameterError{
			Parameter: "memory.size_mb",
			Message: fmt.Sprintf(
				"memory cannot be decreased from %d MB to %d MB once added to a VM",
				current, *h.params.SizeMB),
		}
	}
	return nil
}

func (h *memoryHandler) verifyReservation() error {
	if h.params.Reservation == nil {
		return nil
	}

	sizeMB := ptr.Deref(h.params.SizeMB)
	if sizeMB == 0 && h.cs.VM() != nil {
		sizeMB = int64(h.cs.VM().Config.Hardware.MemoryMB)
	}
	if sizeMB < *h.params.Reservation {
		return ParameterError{
			Parameter: "memory.reservation",
			Message: fmt.Sprintf(
				"memory reservation %d MB cannot be greater than the VM's memory size %d MB",
				*h.params.Reservation, sizeMB),
		}
	}
	return nil
}

func (h *memoryHandler) CompareLiveConfigWithDesiredConfig() error {
	if h.params == nil || h.cs.VM() == nil {
		return nil
	}
	config := h.cs.VM().Config

	if err := h.compareSizeWithHotAdd(config); err != nil {
		return err
	}

	if err := Compare(h.cs, "memory.enable_hot_add",
		h.params.EnableHotAdd, config.MemoryHotAddEnabled, true); err != nil {
		return err
	}
	if err := Compare(h.cs, "memory.reserve_all_memory",
		h.params.ReserveAllMemory, config.MemoryReservationLockedToMax, true); err != nil {
		return err
	}

	var liveShares *int32
	var liveLevel *vimtypes.SharesLevel
	var liveLimit, liveReservation *int64
	if alloc := config.MemoryAllocation; alloc != nil {
		liveLimit = alloc.Limit
		liveReservation = alloc.Reservation
		if alloc.Shares != nil {
			liveShares = &alloc.Shares.Shares
			liveLevel = &alloc.Shares.Level
		}
	}

	if err := Compare(h.cs, "memory.shares", h.params.Shares, liveShares, true); err != nil {
		return err
	}
	if err := Compare(h.cs, "memory.limit", h.params.Limit, liveLimit, true); err != nil {
		return err
	}
	if err := Compare(h.cs, "memory.reservation", h.params.Reservation, liveReservation, true); err != nil {
		return err
	}

	if h.params.Shares == nil && h.params.SharesLevel != "" {
		level := h.params.SharesLevel
		if err := Compare(h.cs, "memory.shares_level", &level, liveLevel, true); err != nil {
			return err
		}
	}
	return nil
}

// compareSizeWithHotAdd handles the memory size change, which can proceed on
// a powered on VM when memory hot add is already enabled live. Decreases
// never reach this point, they are rejected during validation.
func (h *memoryHandler) compareSizeWithHotAdd(config *vimtypes.VirtualMachineConfigInfo) error {
	liveSizeMB := int64(config.Hardware.MemoryMB)
	outcome := Check(h.cs, "memory.size_mb", h.params.SizeMB, &liveSizeMB, true)
	if outcome != OutcomeRequiresPowerCycle {
		return nil
	}
	if h.cs.AllowPowerCycle() {
		h.cs.PowerCycleRequired = true
		Record(h.cs, "memory.size_mb", &liveSizeMB, h.params.SizeMB)
		return nil
	}

	if *h.params.SizeMB > liveSizeMB && !ptr.Deref(config.MemoryHotAddEnabled) {
		return PowerCycleRequiredError{
			Parameter: "memory.size_mb",
			Message: fmt.Sprintf(
				"memory cannot be increased from %d MB to %d MB while the VM is powered on, "+
					"unless memory hot add is already enabled",
				liveSizeMB, *h.params.SizeMB),
		}
	}

	Record(h.cs, "memory.size_mb", &liveSizeMB, h.params.SizeMB)
	return nil
}

func (h *memoryHandler) PopulateConfigSpec(configSpec *vimtypes.VirtualMachineConfigSpec) {
	if h.params == nil {
		return
	}
	if h.params.SizeMB != nil {
		configSpec.MemoryMB = *h.params.SizeMB
	}
	configSpec.MemoryHotAddEnabled = h.params.EnableHotAdd
	configSpec.MemoryReservationLockedToMax = h.params.ReserveAllMemory
	configSpec.MemoryAllocation = resourceAllocation(
		h.params.Shares, h.params.SharesLevel, h.params.Limit, h.params.Reservation)
}
