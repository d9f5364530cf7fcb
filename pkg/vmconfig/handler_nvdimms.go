// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"

	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// nvdimmHandler manages NVDIMM modules together with their implicit
// controller. The controller never appears in user parameters; it is
// synthesized exactly once whenever at least one NVDIMM is declared.
type nvdimmHandler struct {
	params          []NVDIMMParams
	removeUnmanaged bool

	parsed     bool
	controller *NVDIMMController
	nvdimms    []*NVDIMM

	cs      *ChangeSet
	tracker *DeviceTracker
	keys    *DeviceKeyAllocator
}

func newNVDIMMHandler(req *ConfigRequest, cs *ChangeSet, tracker *DeviceTracker, keys *DeviceKeyAllocator) *nvdimmHandler {
	return &nvdimmHandler{
		params:          req.NVDIMMs,
		removeUnmanaged: req.RemoveUnmanagedNVDIMMs,
		cs:              cs,
		tracker:         tracker,
		keys:            keys,
	}
}

func (h *nvdimmHandler) Name() string {
	return "nvdimm"
}

func (h *nvdimmHandler) ChangeSet() *ChangeSet {
	return h.cs
}

func (h *nvdimmHandler) Kinds() []DeviceKind {
	return []DeviceKind{DeviceKindNVDIMMController, DeviceKindNVDIMM}
}

func (h *nvdimmHandler) VerifyParameterConstraints() error {
	if h.parsed {
		return nil
	}

	if len(h.params) > 0 {
		h.controller = NewNVDIMMController()
	}
	for i, params := range h.params {
		if params.SizeMB <= 0 {
			return ParameterError{
				Parameter: "nvdimms",
				Message:   fmt.Sprintf("NVDIMM %d must have a positive size", i),
			}
		}
		h.nvdimms = append(h.nvdimms, NewNVDIMM(i, params, h.controller))
	}
	h.parsed = true
	return nil
}

func (h *nvdimmHandler) LinkVMDevice(dev vimtypes.BaseVirtualDevice) (vimtypes.BaseVirtualDevice, error) {
	var claimed bool
	switch d := dev.(type) {
	case *vimtypes.VirtualNVDIMMController:
		if h.controller != nil && !h.controller.Linked() {
			h.controller.linkLive(d)
			claimed = true
		}
	case *vimtypes.VirtualNVDIMM:
		for _, nvdimm := range h.nvdimms {
			if !nvdimm.Linked() {
				nvdimm.linkLive(d)
				claimed = true
				break
			}
		}
	default:
		return nil, InternalError{
			Message: fmt.Sprintf("%T dispatched to the NVDIMM handler but is not an NVDIMM device", dev),
		}
	}

	if claimed || !h.removeUnmanaged {
		return nil, nil
	}
	return dev, nil
}

func (h *nvdimmHandler) CompareLiveConfigWithDesiredConfig() error {
	// The controller has no options, so a linked controller is in sync and
	// an unlinked one is added alongside its first module.
	if h.controller != nil {
		if h.controller.Linked() {
			h.cs.InSync = append(h.cs.InSync, h.controller)
		} else {
			h.cs.ToAdd = append(h.cs.ToAdd, h.controller)
		}
	}

	devices := make([]Device, 0, len(h.nvdimms))
	for _, n := range h.nvdimms {
		devices = append(devices, n)
	}
	sortDevicesIntoChangeSet(h.cs, devices)
	return nil
}

func (h *nvdimmHandler) PopulateConfigSpec(configSpec *vimtypes.VirtualMachineConfigSpec) {
	populateDeviceChanges(h.cs, h.tracker, h.keys, configSpec)
}
