// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"

	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// NVDIMMController is the implicit controller for NVDIMM modules. It never
// appears in user parameters; it is synthesized exactly once whenever at
// least one NVDIMM is requested. The controller has no configurable options,
// so a linked controller is always in sync.
type NVDIMMController struct {
	key  int32
	live *vimtypes.VirtualNVDIMMController
}

func NewNVDIMMController() *NVDIMMController {
	return &NVDIMMController{}
}

func (c *NVDIMMController) Name() string {
	return "NVDIMM controller"
}

func (c *NVDIMMController) Kind() DeviceKind {
	return DeviceKindNVDIMMController
}

func (c *NVDIMMController) Linked() bool {
	return c.live != nil
}

func (c *NVDIMMController) Key() int32 {
	if c.live != nil {
		return c.live.Key
	}
	return c.key
}

func (c *NVDIMMController) linkLive(dev *vimtypes.VirtualNVDIMMController) {
	c.live = dev
}

func (c *NVDIMMController) DiffersFromLive() bool {
	return c.live == nil
}

func (c *NVDIMMController) NewSpec(keys *DeviceKeyAllocator) vimtypes.BaseVirtualDeviceConfigSpec {
	c.key = keys.Next()
	dev := &vimtypes.VirtualNVDIMMController{}
	dev.Key = c.key
	dev.DeviceInfo = &vimtypes.Description{}

	return &vimtypes.VirtualDeviceConfigSpec{
		Operation: vimtypes.VirtualDeviceConfigSpecOperationAdd,
		Device:    dev,
	}
}

func (c *NVDIMMController) UpdateSpec() vimtypes.BaseVirtualDeviceConfigSpec {
	return &vimtypes.VirtualDeviceConfigSpec{
		Operation: vimtypes.VirtualDeviceConfigSpecOperationEdit,
		Device:    c.live,
	}
}

// NVDIMM is one desired NVDIMM module. Live modules carry no identity
// beyond their label, so modules link to live devices in declaration order.
type NVDIMM struct {
	ordinal    int
	sizeMB     int64
	controller *NVDIMMController

	key  int32
	live *vimtypes.VirtualNVDIMM
}

func NewNVDIMM(ordinal int, params NVDIMMParams, controller *NVDIMMController) *NVDIMM {
	return &NVDIMM{
		ordinal:    ordinal,
		sizeMB:     params.SizeMB,
		controller: controller,
	}
}

func (n *NVDIMM) Name() string {
	return fmt.Sprintf("NVDIMM %d", n.ordinal)
}

func (n *NVDIMM) Kind() DeviceKind {
	return DeviceKindNVDIMM
}

func (n *NVDIMM) Linked() bool {
	return n.live != nil
}

func (n *NVDIMM) Key() int32 {
	if n.live != nil {
		return n.live.Key
	}
	return n.key
}

func (n *NVDIMM) linkLive(dev *vimtypes.VirtualNVDIMM) {
	n.live = dev
}

func (n *NVDIMM) DiffersFromLive() bool {
	if n.live == nil {
		return true
	}
	return n.live.CapacityInMB != n.sizeMB
}

func (n *NVDIMM) NewSpec(keys *DeviceKeyAllocator) vimtypes.BaseVirtualDeviceConfigSpec {
	n.key = keys.Next()
	dev := &vimtypes.VirtualNVDIMM{}
	dev.Key = n.key
	dev.ControllerKey = n.controller.Key()
	dev.DeviceInfo = &vimtypes.Description{}
	dev.Backing = &vimtypes.VirtualNVDIMMBackingInfo{}
	dev.CapacityInMB = n.sizeMB

	return &vimtypes.VirtualDeviceConfigSpec{
		Operation:     vimtypes.VirtualDeviceConfigSpecOperationAdd,
		FileOperation: vimtypes.VirtualDeviceConfigSpecFileOperationCreate,
		Device:        dev,
	}
}

func (n *NVDIMM) UpdateSpec() vimtypes.BaseVirtualDeviceConfigSpec {
	dev := *n.live
	dev.CapacityInMB = n.sizeMB

	return &vimtypes.VirtualDeviceConfigSpec{
		Operation: vimtypes.VirtualDeviceConfigSpecOperationEdit,
		Device:    &dev,
	}
}
