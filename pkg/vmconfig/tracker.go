// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"
)

// TrackedDevice is the identity a tracked spec entry exposes for error
// reporting. Desired devices and removal candidates both satisfy it.
type TrackedDevice interface {
	Name() string
	Kind() DeviceKind
}

// DeviceTracker records devices in the order their change entries are
// appended to a config spec. The platform reports device errors by 1-based
// position in the change list, so the tracker lets the caller translate
// those positions back into the devices that produced them.
type DeviceTracker struct {
	devices []TrackedDevice
}

// NewDeviceTracker returns an empty tracker scoped to one reconciliation
// request.
func NewDeviceTracker() *DeviceTracker {
	return &DeviceTracker{}
}

// Track appends a device to the tracked list.
func (t *DeviceTracker) Track(dev TrackedDevice) {
	t.devices = append(t.devices, dev)
}

// Translate returns the device tracked at the given 1-based position,
// matching the platform's error reporting convention. An out of range id
// signals a defect in spec construction, not bad user input.
func (t *DeviceTracker) Translate(id int) (TrackedDevice, error) {
	if id < 1 || id > len(t.devices) {
		return nil, InternalError{
			Message: fmt.Sprintf("device id %d was never tracked (%d devices in spec)", id, len(t.devices)),
		}
	}
	return t.devices[id-1], nil
}

// Len returns the number of tracked devices.
func (t *DeviceTracker) Len() int {
	return len(t.devices)
}
