// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"

	vimtypes "github.com/vmware/govmomi/vim25/types"
)

type networkAdapterHandler struct {
	params   []NetworkAdapterParams
	declared bool

	parsed   bool
	adapters []*NetworkAdapter

	cs      *ChangeSet
	tracker *DeviceTracker
	keys    *DeviceKeyAllocator
}

func newNetworkAdapterHandler(req *ConfigRequest, cs *ChangeSet, tracker *DeviceTracker, keys *DeviceKeyAllocator) *networkAdapterHandler {
	return &networkAdapterHandler{
		params:   req.NetworkAdapters,
		declared: req.NetworkAdapters != nil,
		cs:       cs,
		tracker:  tracker,
		keys:     keys,
	}
}

func (h *networkAdapterHandler) Name() string {
	return "network_adapter"
}

func (h *networkAdapterHandler) ChangeSet() *ChangeSet {
	return h.cs
}

func (h *networkAdapterHandler) Kinds() []DeviceKind {
	return []DeviceKind{DeviceKindNetworkAdapter}
}

func (h *networkAdapterHandler) VerifyParameterConstraints() error {
	if h.parsed {
		return nil
	}

	for i, params := range h.params {
		switch params.AdapterType {
		case "", AdapterTypeVmxnet3, AdapterTypeVmxnet2, AdapterTypeE1000,
			AdapterTypeE1000e, AdapterTypePCNet32, AdapterTypeSriov:
		default:
			return ParameterError{
				Parameter: "network_adapters",
				Message: fmt.Sprintf(
					"unsupported adapter type %q for network adapter %d",
					params.AdapterType, i+1),
			}
		}
		h.adapters = append(h.adapters, NewNetworkAdapter(i, params))
	}
	h.parsed = true
	return nil
}

// LinkVMDevice matches live adapters to desired adapters strictly in
// encounter order. Live NICs carry no stable identity, so the first live
// adapter binds to the first unlinked desired adapter; an incompatible
// declared type at that position is a hard error.
func (h *networkAdapterHandler) LinkVMDevice(dev vimtypes.BaseVirtualDevice) (vimtypes.BaseVirtualDevice, error) {
	card, ok := dev.(vimtypes.BaseVirtualEthernetCard)
	if !ok {
		return nil, InternalError{
			Message: fmt.Sprintf("%T dispatched to the network adapter handler but is not an ethernet card", dev),
		}
	}

	for _, adapter := range h.adapters {
		if adapter.Linked() {
			continue
		}
		if err := adapter.linkLive(card); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if !h.declared {
		return nil, nil
	}
	return dev, nil
}

func (h *networkAdapterHandler) CompareLiveConfigWithDesiredConfig() error {
	devices := make([]Device, 0, len(h.adapters))
	for _, a := range h.adapters {
		devices = append(devices, a)
	}
	sortDevicesIntoChangeSet(h.cs, devices)
	return nil
}

func (h *networkAdapterHandler) PopulateConfigSpec(configSpec *vimtypes.VirtualMachineConfigSpec) {
	populateDeviceChanges(h.cs, h.tracker, h.keys, configSpec)
}
