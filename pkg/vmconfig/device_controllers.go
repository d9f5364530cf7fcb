// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"
	"strings"

	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconfig/pkg/util/ptr"
)

// Controller categories as they appear in device nodes.
const (
	ControllerCategorySCSI = "scsi"
	ControllerCategorySATA = "sata"
	ControllerCategoryNVME = "nvme"
	ControllerCategoryIDE  = "ide"
)

// SCSI controller models.
const (
	SCSITypeLsiLogic    = "lsilogic"
	SCSITypeLsiLogicSAS = "lsilogicsas"
	SCSITypeParavirtual = "paravirtual"
	SCSITypeBusLogic    = "buslogic"
)

// scsiControllerUnitNumber is the unit number every SCSI controller reserves
// for itself on its own bus.
const scsiControllerUnitNumber = 7

// liveController is a snapshot of an existing controller device, captured at
// link time so comparisons never reach back into the managed object.
type liveController struct {
	key          int32
	bus          int32
	scsiSharing  vimtypes.VirtualSCSISharing
	hotAddRemove *bool
	nvmeSharing  string
	device       vimtypes.BaseVirtualDevice
}

// DiskController is one desired SCSI, SATA, NVMe, or IDE controller.
// Controllers are identified by category and bus number; devices attach to
// them by unit number. IDE controllers are present on every VM and are only
// ever linked, never added or edited.
type DiskController struct {
	category string
	bus      int32

	// SCSI options.
	scsiType     string
	scsiSharing  vimtypes.VirtualSCSISharing
	hotAddRemove *bool

	// NVMe options.
	nvmeSharing string

	key      int32
	live     *liveController
	children map[int32]Device
}

func newDiskController(category string, bus int32) *DiskController {
	return &DiskController{
		category: category,
		bus:      bus,
		children: map[int32]Device{},
	}
}

// NewSCSIController builds the desired SCSI controller for the given bus.
func NewSCSIController(bus int32, params SCSIControllerParams) *DiskController {
	c := newDiskController(ControllerCategorySCSI, bus)
	c.scsiType = params.Type
	c.scsiSharing = params.BusSharing
	c.hotAddRemove = params.EnableHotAddRemove
	return c
}

// NewSATAController builds the desired SATA controller for the given bus.
func NewSATAController(bus int32) *DiskController {
	return newDiskController(ControllerCategorySATA, bus)
}

// NewNVMEController builds the desired NVMe controller for the given bus.
func NewNVMEController(bus int32, params NVMEControllerParams) *DiskController {
	c := newDiskController(ControllerCategoryNVME, bus)
	c.nvmeSharing = params.BusSharing
	return c
}

// NewIDEController builds the representation of one of the VM's fixed IDE
// controllers. IDE controllers exist so other devices can reference them.
func NewIDEController(bus int32) *DiskController {
	return newDiskController(ControllerCategoryIDE, bus)
}

func (c *DiskController) Name() string {
	return fmt.Sprintf("%s(%d:)", strings.ToUpper(c.category), c.bus)
}

func (c *DiskController) Kind() DeviceKind {
	switch c.category {
	case ControllerCategorySCSI:
		return DeviceKindSCSIController
	case ControllerCategorySATA:
		return DeviceKindSATAController
	case ControllerCategoryNVME:
		return DeviceKindNVMEController
	default:
		return DeviceKindIDEController
	}
}

// Category returns the controller's device node category.
func (c *DiskController) Category() string {
	return c.category
}

// Bus returns the controller's bus number.
func (c *DiskController) Bus() int32 {
	return c.bus
}

func (c *DiskController) Linked() bool {
	return c.live != nil
}

func (c *DiskController) Key() int32 {
	if c.live != nil {
		return c.live.key
	}
	return c.key
}

// AttachDevice registers a device at the given unit number, rejecting unit
// number collisions.
func (c *DiskController) AttachDevice(unit int32, dev Device) error {
	if _, ok := c.children[unit]; ok {
		return ParameterError{
			Message: fmt.Sprintf(
				"cannot attach multiple devices with unit number %d on controller %s",
				unit, c.Name()),
		}
	}
	c.children[unit] = dev
	return nil
}

// linkLive binds an existing controller device to this desired controller.
func (c *DiskController) linkLive(dev vimtypes.BaseVirtualController) {
	ctrl := dev.GetVirtualController()
	live := &liveController{
		key:    ctrl.Key,
		bus:    ctrl.BusNumber,
		device: dev.(vimtypes.BaseVirtualDevice),
	}
	switch d := dev.(type) {
	case vimtypes.BaseVirtualSCSIController:
		scsi := d.GetVirtualSCSIController()
		live.scsiSharing = scsi.SharedBus
		live.hotAddRemove = scsi.HotAddRemove
	case *vimtypes.VirtualNVMEController:
		live.nvmeSharing = d.SharedBus
	}
	c.live = live
}

func (c *DiskController) DiffersFromLive() bool {
	if c.live == nil {
		return true
	}
	if c.live.bus != c.bus {
		return true
	}
	switch c.category {
	case ControllerCategorySCSI:
		if c.scsiSharing != "" && c.live.scsiSharing != c.scsiSharing {
			return true
		}
		if c.hotAddRemove != nil && !ptr.Equal(c.live.hotAddRemove, c.hotAddRemove) {
			return true
		}
	case ControllerCategoryNVME:
		if c.nvmeSharing != "" && c.live.nvmeSharing != c.nvmeSharing {
			return true
		}
	}
	return false
}

func (c *DiskController) NewSpec(keys *DeviceKeyAllocator) vimtypes.BaseVirtualDeviceConfigSpec {
	c.key = keys.Next()
	dev := c.newDevice()
	ctrl := dev.GetVirtualController()
	ctrl.Key = c.key
	ctrl.BusNumber = c.bus
	ctrl.DeviceInfo = &vimtypes.Description{}

	return &vimtypes.VirtualDeviceConfigSpec{
		Operation: vimtypes.VirtualDeviceConfigSpecOperationAdd,
		Device:    dev.(vimtypes.BaseVirtualDevice),
	}
}

func (c *DiskController) UpdateSpec() vimtypes.BaseVirtualDeviceConfigSpec {
	dev := c.newDevice()
	ctrl := dev.GetVirtualController()
	ctrl.Key = c.live.key
	ctrl.BusNumber = c.bus
	ctrl.DeviceInfo = &vimtypes.Description{}

	return &vimtypes.VirtualDeviceConfigSpec{
		Operation: vimtypes.VirtualDeviceConfigSpecOperationEdit,
		Device:    dev.(vimtypes.BaseVirtualDevice),
	}
}

// newDevice builds the bare controller device for this category and model,
// with category specific options applied.
func (c *DiskController) newDevice() vimtypes.BaseVirtualController {
	switch c.category {
	case ControllerCategorySCSI:
		scsi := vimtypes.VirtualSCSIController{
			HotAddRemove:       c.hotAddRemove,
			SharedBus:          c.scsiSharing,
			ScsiCtlrUnitNumber: scsiControllerUnitNumber,
		}
		switch c.scsiType {
		case SCSITypeParavirtual:
			return &vimtypes.ParaVirtualSCSIController{VirtualSCSIController: scsi}
		case SCSITypeBusLogic:
			return &vimtypes.VirtualBusLogicController{VirtualSCSIController: scsi}
		case SCSITypeLsiLogicSAS:
			return &vimtypes.VirtualLsiLogicSASController{VirtualSCSIController: scsi}
		default:
			return &vimtypes.VirtualLsiLogicController{VirtualSCSIController: scsi}
		}
	case ControllerCategoryNVME:
		return &vimtypes.VirtualNVMEController{SharedBus: c.nvmeSharing}
	case ControllerCategoryIDE:
		return &vimtypes.VirtualIDEController{}
	default:
		return &vimtypes.VirtualAHCIController{}
	}
}
