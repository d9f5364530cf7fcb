// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

// DeviceKeyAllocator hands out synthetic negative device keys for devices
// that do not exist yet. The platform assigns real positive keys on creation
// and overwrites these, but within a single config spec later entries must
// be able to reference earlier ones, e.g. a disk referencing its not yet
// created controller. Keys count down from -100 so allocation is
// deterministic within a request and never collides with a real key.
type DeviceKeyAllocator struct {
	next int32
}

// NewDeviceKeyAllocator returns an allocator scoped to one reconciliation
// request.
func NewDeviceKeyAllocator() *DeviceKeyAllocator {
	return &DeviceKeyAllocator{next: -100}
}

// Next returns the next unused synthetic key.
func (a *DeviceKeyAllocator) Next() int32 {
	k := a.next
	a.next--
	return k
}
