// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"

	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconfig/pkg/util/ptr"
)

type cpuHandler struct {
	params *CPUParams
	cs     *ChangeSet
}

func newCPUHandler(req *ConfigRequest, cs *ChangeSet) *cpuHandler {
	return &cpuHandler{
		params: req.CPU,
		cs:     cs,
	}
}

func (h *cpuHandler) Name() string {
	return "cpu"
}

func (h *cpuHandler) ChangeSet() *ChangeSet {
	return h.cs
}

func (h *cpuHandler) VerifyParameterConstraints() error {
	if h.params == nil {
		if h.cs.VM() == nil {
			return ParameterError{
				Parameter: "cpu",
				Message:   "the cpu parameters are mandatory for VM creation",
			}
		}
		return nil
	}

	cores := ptr.Deref(h.params.Cores)
	coresPerSocket := ptr.DerefWithDefault(h.params.CoresPerSocket, 1)
	if cores != 0 && coresPerSocket != 0 && cores%coresPerSocket != 0 {
		return ParameterError{
			Parameter: "cpu.cores",
			Message:   "cpu.cores must be a multiple of cpu.cores_per_socket",
		}
	}

	if h.cs.VM() == nil && cores == 0 {
		return ParameterError{
			Parameter: "cpu.cores",
			Message:   "the cpu.cores attribute is mandatory for VM creation",
		}
	}
	return nil
}

func (h *cpuHandler) CompareLiveConfigWithDesiredConfig() error {
	if h.params == nil || h.cs.VM() == nil {
		return nil
	}
	config := h.cs.VM().Config

	if err := h.compareCoresWithHotAddRemove(config); err != nil {
		return err
	}

	if err := Compare(h.cs, "cpu.cores_per_socket",
		h.params.CoresPerSocket, &config.Hardware.NumCoresPerSocket, true); err != nil {
		return err
	}
	if err := Compare(h.cs, "cpu.enable_hot_add",
		h.params.EnableHotAdd, config.CpuHotAddEnabled, true); err != nil {
		return err
	}
	if err := Compare(h.cs, "cpu.enable_hot_remove",
		h.params.EnableHotRemove, config.CpuHotRemoveEnabled, true); err != nil {
		return err
	}
	if err := Compare(h.cs, "cpu.enable_performance_counters",
		h.params.EnablePerformanceCounters, config.VPMCEnabled, true); err != nil {
		return err
	}

	var liveShares *int32
	var liveLevel *vimtypes.SharesLevel
	var liveLimit, liveReservation *int64
	if alloc := config.CpuAllocation; alloc != nil {
		liveLimit = alloc.Limit
		liveReservation = alloc.Reservation
		if alloc.Shares != nil {
			liveShares = &alloc.Shares.Shares
			liveLevel = &alloc.Shares.Level
		}
	}

	if err := Compare(h.cs, "cpu.shares", h.params.Shares, liveShares, true); err != nil {
		return err
	}
	if err := Compare(h.cs, "cpu.limit", h.params.Limit, liveLimit, true); err != nil {
		return err
	}
	if err := Compare(h.cs, "cpu.reservation", h.params.Reservation, liveReservation, true); err != nil {
		return err
	}

	// The shares level only matters when no custom share count overrides it.
	if h.params.Shares == nil && h.params.SharesLevel != "" {
		level := h.params.SharesLevel
		if err := Compare(h.cs, "cpu.shares_level", &level, liveLevel, true); err != nil {
			return err
		}
	}
	return nil
}

// compareCoresWithHotAddRemove handles the core count change, which can
// proceed on a powered on VM when the matching hot add or hot remove
// capability is already enabled live.
func (h *cpuHandler) compareCoresWithHotAddRemove(config *vimtypes.VirtualMachineConfigInfo) error {
	outcome := Check(h.cs, "cpu.cores", h.params.Cores, &config.Hardware.NumCPU, true)
	if outcome != OutcomeRequiresPowerCycle {
		return nil
	}
	if h.cs.AllowPowerCycle() {
		h.cs.PowerCycleRequired = true
		Record(h.cs, "cpu.cores", &config.Hardware.NumCPU, h.params.Cores)
		return nil
	}

	cores := *h.params.Cores
	currentCores := config.Hardware.NumCPU
	if cores < currentCores && !ptr.Deref(config.CpuHotRemoveEnabled) {
		return PowerCycleRequiredError{
			Parameter: "cpu.cores",
			Message: fmt.Sprintf(
				"CPUs cannot be decreased from %d to %d while the VM is powered on, "+
					"unless CPU hot remove is already enabled",
				currentCores, cores),
		}
	}
	if cores > currentCores && !ptr.Deref(config.CpuHotAddEnabled) {
		return PowerCycleRequiredError{
			Parameter: "cpu.cores",
			Message: fmt.Sprintf(
				"CPUs cannot be increased from %d to %d while the VM is powered on, "+
					"unless CPU hot add is already enabled",
				currentCores, cores),
		}
	}

	// Hot add or remove covers the change, no power cycle needed.
	Record(h.cs, "cpu.cores", &config.Hardware.NumCPU, h.params.Cores)
	return nil
}

func (h *cpuHandler) PopulateConfigSpec(configSpec *vimtypes.VirtualMachineConfigSpec) {
	if h.params == nil {
		return
	}
	if h.params.Cores != nil {
		configSpec.NumCPUs = *h.params.Cores
	}
	if h.params.CoresPerSocket != nil {
		configSpec.NumCoresPerSocket = *h.params.CoresPerSocket
	}
	configSpec.CpuHotAddEnabled = h.params.EnableHotAdd
	configSpec.CpuHotRemoveEnabled = h.params.EnableHotRemove
	configSpec.VPMCEnabled = h.params.EnablePerformanceCounters
	configSpec.CpuAllocation = resourceAllocation(
		h.params.Shares, h.params.SharesLevel, h.params.Limit, h.params.Reservation)
}
