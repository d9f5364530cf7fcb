// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"
	"strings"

	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// Per-category controller maximums.
const (
	maxSCSIControllers = 4
	maxSATAControllers = 4
	maxNVMEControllers = 4
	ideControllerCount = 2
)

// diskControllerHandler manages the controllers of one category. IDE
// controllers are special: every VM has exactly two and they are not user
// configurable, so they are parsed for linking only and never produce device
// changes.
type diskControllerHandler struct {
	category string
	kind     DeviceKind
	maxCount int

	// declared is false when the caller expressed no opinion about this
	// category; live controllers are then adopted as is.
	declared bool
	linkOnly bool
	parse    func() []*DiskController

	controllers []*DiskController
	byBus       map[int32]*DiskController

	cs      *ChangeSet
	tracker *DeviceTracker
	keys    *DeviceKeyAllocator
}

func newSCSIControllerHandler(req *ConfigRequest, cs *ChangeSet, tracker *DeviceTracker, keys *DeviceKeyAllocator) *diskControllerHandler {
	return &diskControllerHandler{
		category: ControllerCategorySCSI,
		kind:     DeviceKindSCSIController,
		maxCount: maxSCSIControllers,
		declared: req.SCSIControllers != nil,
		parse: func() []*DiskController {
			controllers := make([]*DiskController, 0, len(req.SCSIControllers))
			for i, params := range req.SCSIControllers {
				controllers = append(controllers, NewSCSIController(int32(i), params))
			}
			return controllers
		},
		cs:      cs,
		tracker: tracker,
		keys:    keys,
	}
}

func newSATAControllerHandler(req *ConfigRequest, cs *ChangeSet, tracker *DeviceTracker, keys *DeviceKeyAllocator) *diskControllerHandler {
	return &diskControllerHandler{
		category: ControllerCategorySATA,
		kind:     DeviceKindSATAController,
		maxCount: maxSATAControllers,
		declared: req.SATAControllerCount != nil,
		parse: func() []*DiskController {
			var count int32
			if req.SATAControllerCount != nil {
				count = *req.SATAControllerCount
			}
			controllers := make([]*DiskController, 0, count)
			for i := int32(0); i < count; i++ {
				controllers = append(controllers, NewSATAController(i))
			}
			return controllers
		},
		cs:      cs,
		tracker: tracker,
		keys:    keys,
	}
}

func newNVMEControllerHandler(req *ConfigRequest, cs *ChangeSet, tracker *DeviceTracker, keys *DeviceKeyAllocator) *diskControllerHandler {
	return &diskControllerHandler{
		category: ControllerCategoryNVME,
		kind:     DeviceKindNVMEController,
		maxCount: maxNVMEControllers,
		declared: req.NVMEControllers != nil,
		parse: func() []*DiskController {
			controllers := make([]*DiskController, 0, len(req.NVMEControllers))
			for i, params := range req.NVMEControllers {
				controllers = append(controllers, NewNVMEController(int32(i), params))
			}
			return controllers
		},
		cs:      cs,
		tracker: tracker,
		keys:    keys,
	}
}

func newIDEControllerHandler(cs *ChangeSet, tracker *DeviceTracker, keys *DeviceKeyAllocator) *diskControllerHandler {
	return &diskControllerHandler{
		category: ControllerCategoryIDE,
		kind:     DeviceKindIDEController,
		maxCount: ideControllerCount,
		declared: true,
		linkOnly: true,
		parse: func() []*DiskController {
			controllers := make([]*DiskController, 0, ideControllerCount)
			for i := int32(0); i < ideControllerCount; i++ {
				controllers = append(controllers, NewIDEController(i))
			}
			return controllers
		},
		cs:      cs,
		tracker: tracker,
		keys:    keys,
	}
}

func (h *diskControllerHandler) Name() string {
	return h.category + "_controller"
}

func (h *diskControllerHandler) ChangeSet() *ChangeSet {
	return h.cs
}

func (h *diskControllerHandler) Kinds() []DeviceKind {
	return []DeviceKind{h.kind}
}

func (h *diskControllerHandler) VerifyParameterConstraints() error {
	if h.byBus == nil {
		h.controllers = h.parse()
		h.byBus = make(map[int32]*DiskController, len(h.controllers))
		for _, c := range h.controllers {
			h.byBus[c.Bus()] = c
		}
	}

	if len(h.controllers) > h.maxCount {
		return ResourceConstraintError{
			Parameter: h.category + "_controllers",
			Category:  h.category,
			Limit:     h.maxCount,
			Attempted: len(h.controllers),
			Message: fmt.Sprintf(
				"only a maximum of %d %s controllers are allowed, but trying to manage %d controllers",
				h.maxCount, strings.ToUpper(h.category), len(h.controllers)),
		}
	}
	return nil
}

// ControllerAt returns the declared controller on the given bus.
func (h *diskControllerHandler) ControllerAt(bus int32) (*DiskController, bool) {
	c, ok := h.byBus[bus]
	return c, ok
}

// Controllers returns the declared controllers in bus order.
func (h *diskControllerHandler) Controllers() []*DiskController {
	return h.controllers
}

func (h *diskControllerHandler) LinkVMDevice(dev vimtypes.BaseVirtualDevice) (vimtypes.BaseVirtualDevice, error) {
	ctrl, ok := dev.(vimtypes.BaseVirtualController)
	if !ok {
		return nil, InternalError{
			Message: fmt.Sprintf("%T dispatched to the %s handler but is not a controller", dev, h.Name()),
		}
	}

	if c, found := h.byBus[ctrl.GetVirtualController().BusNumber]; found && !c.Linked() {
		c.linkLive(ctrl)
		return nil, nil
	}

	if !h.declared || h.linkOnly {
		// The caller has no opinion, adopt the live controller as is.
		return nil, nil
	}
	return dev, nil
}

func (h *diskControllerHandler) CompareLiveConfigWithDesiredConfig() error {
	if h.linkOnly {
		return nil
	}
	devices := make([]Device, 0, len(h.controllers))
	for _, c := range h.controllers {
		devices = append(devices, c)
	}
	sortDevicesIntoChangeSet(h.cs, devices)
	return nil
}

func (h *diskControllerHandler) PopulateConfigSpec(configSpec *vimtypes.VirtualMachineConfigSpec) {
	populateDeviceChanges(h.cs, h.tracker, h.keys, configSpec)
}
