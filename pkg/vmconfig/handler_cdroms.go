// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"

	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconfig/pkg/util"
)

type cdromHandler struct {
	params   []CdromParams
	declared bool
	resolver controllerResolver

	parsed bool
	cdroms []*Cdrom

	cs      *ChangeSet
	tracker *DeviceTracker
	keys    *DeviceKeyAllocator
}

func newCdromHandler(req *ConfigRequest, cs *ChangeSet, tracker *DeviceTracker, keys *DeviceKeyAllocator, resolver controllerResolver) *cdromHandler {
	return &cdromHandler{
		params:   req.CDROMs,
		declared: req.CDROMs != nil,
		resolver: resolver,
		cs:       cs,
		tracker:  tracker,
		keys:     keys,
	}
}

func (h *cdromHandler) Name() string {
	return "cdrom"
}

func (h *cdromHandler) ChangeSet() *ChangeSet {
	return h.cs
}

func (h *cdromHandler) Kinds() []DeviceKind {
	return []DeviceKind{DeviceKindCdrom}
}

func (h *cdromHandler) VerifyParameterConstraints() error {
	if h.parsed {
		return nil
	}

	for _, params := range h.params {
		node, err := util.ParseDeviceNode(params.DeviceNode)
		if err != nil {
			return ParameterError{
				Parameter: "cdroms",
				Message:   fmt.Sprintf("error parsing cdrom parameters: %v", err),
			}
		}
		if node.Category != ControllerCategorySATA && node.Category != ControllerCategoryIDE {
			return ParameterError{
				Parameter: "cdroms",
				Message: fmt.Sprintf(
					"only SATA and IDE controllers are supported for CD-ROMs, device node %s is not valid",
					params.DeviceNode),
			}
		}
		if params.ISOMediaPath != "" && params.ClientDeviceMode != "" {
			return ParameterError{
				Parameter: "cdroms",
				Message: fmt.Sprintf(
					"iso_media_path and client_device_mode are mutually exclusive for device %s",
					params.DeviceNode),
			}
		}

		controller, ok := h.resolver.resolve(node)
		if !ok {
			return ResourceConstraintError{
				Parameter: "cdroms",
				Category:  node.Category,
				Available: h.resolver.available(),
				Message: fmt.Sprintf(
					"no controller has been configured for device %s; "+
						"you must specify this controller in the appropriate controller parameter",
					params.DeviceNode),
			}
		}
		cdrom, err := NewCdrom(params, node, controller)
		if err != nil {
			return err
		}
		h.cdroms = append(h.cdroms, cdrom)
	}
	h.parsed = true
	return nil
}

func (h *cdromHandler) LinkVMDevice(dev vimtypes.BaseVirtualDevice) (vimtypes.BaseVirtualDevice, error) {
	cdrom, ok := dev.(*vimtypes.VirtualCdrom)
	if !ok {
		return nil, InternalError{
			Message: fmt.Sprintf("%T dispatched to the cdrom handler but is not a CD-ROM", dev),
		}
	}

	for _, c := range h.cdroms {
		if !c.Linked() && c.Matches(cdrom) {
			if err := c.linkLive(cdrom); err != nil {
				return nil, err
			}
			return nil, nil
		}
	}

	if !h.declared {
		return nil, nil
	}
	return dev, nil
}

func (h *cdromHandler) CompareLiveConfigWithDesiredConfig() error {
	devices := make([]Device, 0, len(h.cdroms))
	for _, c := range h.cdroms {
		devices = append(devices, c)
	}
	sortDevicesIntoChangeSet(h.cs, devices)
	return nil
}

func (h *cdromHandler) PopulateConfigSpec(configSpec *vimtypes.VirtualMachineConfigSpec) {
	populateDeviceChanges(h.cs, h.tracker, h.keys, configSpec)
}
