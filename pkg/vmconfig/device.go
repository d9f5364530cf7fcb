// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"

	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// Device is one managed virtual device in the desired configuration. A
// device is linked to at most one live device; an unlinked device is new and
// produces an add spec, a linked device that differs from its live
// counterpart produces an edit spec.
type Device interface {
	// Name is a human readable identity used in error messages, e.g.
	// "SCSI(0:0)" or "network adapter 2".
	Name() string

	Kind() DeviceKind

	// Linked reports whether a live device has been bound to this one.
	Linked() bool

	// Key returns the live device key when linked, or the synthetic
	// negative key assigned by NewSpec for new devices. Calling Key on an
	// unlinked device before NewSpec ran returns 0.
	Key() int32

	// NewSpec builds the add spec for an unlinked device, drawing any
	// synthetic key it needs from the allocator.
	NewSpec(keys *DeviceKeyAllocator) vimtypes.BaseVirtualDeviceConfigSpec

	// UpdateSpec builds the edit spec that reshapes the linked live
	// device into the desired one.
	UpdateSpec() vimtypes.BaseVirtualDeviceConfigSpec

	// DiffersFromLive reports whether the linked live device deviates
	// from the desired state. Unlinked devices always differ.
	DiffersFromLive() bool
}

// populateDeviceChanges appends the add and edit specs for a change set's
// staged devices, tracking each one so spec positions can be mapped back to
// devices when the platform reports an error by index.
func populateDeviceChanges(cs *ChangeSet, tracker *DeviceTracker, keys *DeviceKeyAllocator, configSpec *vimtypes.VirtualMachineConfigSpec) {
	for _, dev := range cs.ToAdd {
		tracker.Track(dev)
		configSpec.DeviceChange = append(configSpec.DeviceChange, dev.NewSpec(keys))
	}
	for _, dev := range cs.ToUpdate {
		tracker.Track(dev)
		configSpec.DeviceChange = append(configSpec.DeviceChange, dev.UpdateSpec())
	}
}

// removeDeviceSpec builds the removal spec for a live device the request no
// longer claims.
func removeDeviceSpec(dev vimtypes.BaseVirtualDevice) vimtypes.BaseVirtualDeviceConfigSpec {
	return &vimtypes.VirtualDeviceConfigSpec{
		Operation: vimtypes.VirtualDeviceConfigSpecOperationRemove,
		Device:    dev,
	}
}

// removedDevice gives an unclaimed live device queued for removal a
// trackable identity, so spec position errors reported by the platform can
// name it like any desired device.
type removedDevice struct {
	dev vimtypes.BaseVirtualDevice
}

func (r removedDevice) Name() string {
	vd := r.dev.GetVirtualDevice()
	if vd.DeviceInfo != nil {
		if desc := vd.DeviceInfo.GetDescription(); desc != nil && desc.Label != "" {
			return desc.Label
		}
	}
	return fmt.Sprintf("%T with key %d", r.dev, vd.Key)
}

func (r removedDevice) Kind() DeviceKind {
	return ClassifyDevice(r.dev)
}

// sortDevicesIntoChangeSet files each device into the change set bucket its
// link state calls for.
func sortDevicesIntoChangeSet(cs *ChangeSet, devices []Device) {
	for _, dev := range devices {
		switch {
		case !dev.Linked():
			cs.ToAdd = append(cs.ToAdd, dev)
		case dev.DiffersFromLive():
			cs.ToUpdate = append(cs.ToUpdate, dev)
		default:
			cs.InSync = append(cs.InSync, dev)
		}
	}
}
