// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"

	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconfig/pkg/util"
	"github.com/vmware-tanzu/vm-reconfig/pkg/util/ptr"
)

// controllerResolver finds the declared controller a device node refers to,
// looking across every controller category.
type controllerResolver struct {
	handlers []*diskControllerHandler
}

func (r controllerResolver) resolve(node util.DeviceNode) (*DiskController, bool) {
	for _, h := range r.handlers {
		if h.category == node.Category {
			return h.ControllerAt(node.Bus)
		}
	}
	return nil, false
}

// available lists every declared controller for error messages.
func (r controllerResolver) available() []string {
	var names []string
	for _, h := range r.handlers {
		for _, c := range h.Controllers() {
			names = append(names, c.Name())
		}
	}
	return names
}

type diskHandler struct {
	params   []DiskParams
	declared bool
	resolver controllerResolver

	parsed bool
	disks  []*Disk

	cs      *ChangeSet
	tracker *DeviceTracker
	keys    *DeviceKeyAllocator
}

func newDiskHandler(req *ConfigRequest, cs *ChangeSet, tracker *DeviceTracker, keys *DeviceKeyAllocator, resolver controllerResolver) *diskHandler {
	return &diskHandler{
		params:   req.Disks,
		declared: req.Disks != nil,
		resolver: resolver,
		cs:       cs,
		tracker:  tracker,
		keys:     keys,
	}
}

func (h *diskHandler) Name() string {
	return "disk"
}

func (h *diskHandler) ChangeSet() *ChangeSet {
	return h.cs
}

func (h *diskHandler) Kinds() []DeviceKind {
	return []DeviceKind{DeviceKindDisk}
}

func (h *diskHandler) VerifyParameterConstraints() error {
	if !h.parsed {
		for _, params := range h.params {
			node, err := util.ParseDeviceNode(params.DeviceNode)
			if err != nil {
				return ParameterError{
					Parameter: "disks",
					Message:   fmt.Sprintf("error parsing disk parameters: %v", err),
				}
			}
			controller, ok := h.resolver.resolve(node)
			if !ok {
				return ResourceConstraintError{
					Parameter: "disks",
					Category:  node.Category,
					Available: h.resolver.available(),
					Message: fmt.Sprintf(
						"no controller has been configured for device %s; "+
							"you must specify this controller in the appropriate controller parameter",
						params.DeviceNode),
				}
			}
			disk, err := NewDisk(params, node, controller)
			if err != nil {
				return err
			}
			h.disks = append(h.disks, disk)
		}
		h.parsed = true
	}

	if h.cs.VM() == nil && len(h.disks) == 0 {
		return ParameterError{
			Parameter: "disks",
			Message:   "at least one disk must be defined when creating a VM",
		}
	}
	return nil
}

func (h *diskHandler) LinkVMDevice(dev vimtypes.BaseVirtualDevice) (vimtypes.BaseVirtualDevice, error) {
	disk, ok := dev.(*vimtypes.VirtualDisk)
	if !ok {
		return nil, InternalError{
			Message: fmt.Sprintf("%T dispatched to the disk handler but is not a disk", dev),
		}
	}

	for _, d := range h.disks {
		if !d.Linked() && d.Matches(disk) {
			d.linkLive(disk)
			return nil, nil
		}
	}

	if !h.declared {
		return nil, nil
	}

	// An unmatched live disk is never removed implicitly; losing data
	// requires an explicit decision from the caller.
	return nil, DeviceLinkError{
		Device: fmt.Sprintf("disk at unit %d on controller key %d",
			ptr.Deref(disk.UnitNumber), disk.ControllerKey),
		Message: "the disk does not match any entry in the disks parameter",
	}
}

func (h *diskHandler) CompareLiveConfigWithDesiredConfig() error {
	devices := make([]Device, 0, len(h.disks))
	for _, d := range h.disks {
		devices = append(devices, d)
	}
	sortDevicesIntoChangeSet(h.cs, devices)
	return nil
}

func (h *diskHandler) PopulateConfigSpec(configSpec *vimtypes.VirtualMachineConfigSpec) {
	populateDeviceChanges(h.cs, h.tracker, h.keys, configSpec)
}
