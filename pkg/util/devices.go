// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// SelectDeviceFn returns true if the provided virtual device is a match.
type SelectDeviceFn[T vimtypes.BaseVirtualDevice] func(dev vimtypes.BaseVirtualDevice) bool

// SelectDevices returns a slice of the devices that match at least one of the
// provided selector functions.
func SelectDevices[T vimtypes.BaseVirtualDevice](
	devices []vimtypes.BaseVirtualDevice,
	selectorFns ...SelectDeviceFn[T],
) []T {

	var selectedDevices []T
	for i := range devices {
		if t, ok := devices[i].(T); ok {
			for j := range selectorFns {
				if selectorFns[j](t) {
					selectedDevices = append(selectedDevices, t)
					break
				}
			}
		}
	}
	return selectedDevices
}

// SelectDevicesByType returns a slice of the devices that are of type T.
func SelectDevicesByType[T vimtypes.BaseVirtualDevice](
	devices []vimtypes.BaseVirtualDevice,
) []T {

	var selectedDevices []T
	for i := range devices {
		if t, ok := devices[i].(T); ok {
			selectedDevices = append(selectedDevices, t)
		}
	}
	return selectedDevices
}

// DevicesFromDeviceChange returns the devices referenced by the provided
// device-change entries that have the given operation.
func DevicesFromDeviceChange(
	deviceChanges []vimtypes.BaseVirtualDeviceConfigSpec,
	op vimtypes.VirtualDeviceConfigSpecOperation,
) []vimtypes.BaseVirtualDevice {

	var devices []vimtypes.BaseVirtualDevice
	for i := range deviceChanges {
		if spec := deviceChanges[i].GetVirtualDeviceConfigSpec(); spec != nil {
			if spec.Operation == op && spec.Device != nil {
				devices = append(devices, spec.Device)
			}
		}
	}
	return devices
}

// IsEthernetCard returns true if the provided device is one of the concrete
// virtual ethernet card types.
func IsEthernetCard(dev vimtypes.BaseVirtualDevice) bool {
	switch dev.(type) {
	case *vimtypes.VirtualE1000, *vimtypes.VirtualE1000e, *vimtypes.VirtualPCNet32,
		*vimtypes.VirtualVmxnet2, *vimtypes.VirtualVmxnet3, *vimtypes.VirtualVmxnet3Vrdma,
		*vimtypes.VirtualSriovEthernetCard:
		return true
	default:
		return false
	}
}
