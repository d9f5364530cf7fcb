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

// Disk backing provisioning modes.
const (
	DiskBackingThin        = "thin"
	DiskBackingThick       = "thick"
	DiskBackingEagerZeroed = "eagerzeroedthick"
)

// Disk is one desired virtual disk, attached to a controller at a unit
// number taken from its device node.
type Disk struct {
	node       util.DeviceNode
	sizeKB     int64
	backing    string
	mode       string
	controller *DiskController

	key  int32
	live *vimtypes.VirtualDisk
}

// NewDisk builds the desired disk described by params, attaching it to the
// controller its device node names.
func NewDisk(params DiskParams, node util.DeviceNode, controller *DiskController) (*Disk, error) {
	sizeKB, err := util.ParseSizeAsKB(params.Size)
	if err != nil {
		return nil, ParameterError{
			Parameter: "disks",
			Message:   fmt.Sprintf("invalid size for disk %s: %v", node.String(), err),
		}
	}

	switch params.Backing {
	case "", DiskBackingThin, DiskBackingThick, DiskBackingEagerZeroed:
	default:
		return nil, ParameterError{
			Parameter: "disks",
			Message: fmt.Sprintf(
				"backing for disk %s must be %q, %q, or %q, got %q",
				node.String(), DiskBackingThin, DiskBackingThick, DiskBackingEagerZeroed,
				params.Backing),
		}
	}

	switch vimtypes.VirtualDiskMode(params.Mode) {
	case "", vimtypes.VirtualDiskModePersistent,
		vimtypes.VirtualDiskModeIndependent_persistent,
		vimtypes.VirtualDiskModeIndependent_nonpersistent:
	default:
		return nil, ParameterError{
			Parameter: "disks",
			Message: fmt.Sprintf(
				"mode for disk %s must be %q, %q, or %q, got %q",
				node.String(), vimtypes.VirtualDiskModePersistent,
				vimtypes.VirtualDiskModeIndependent_persistent,
				vimtypes.VirtualDiskModeIndependent_nonpersistent, params.Mode),
		}
	}

	d := &Disk{
		node:       node,
		sizeKB:     sizeKB,
		backing:    params.Backing,
		mode:       params.Mode,
		controller: controller,
	}
	if err := controller.AttachDevice(node.Unit, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Disk) Name() string {
	return fmt.Sprintf("Disk - %s Unit %d", d.controller.Name(), d.node.Unit)
}

func (d *Disk) Kind() DeviceKind {
	return DeviceKindDisk
}

func (d *Disk) Linked() bool {
	return d.live != nil
}

func (d *Disk) Key() int32 {
	if d.live != nil {
		return d.live.Key
	}
	return d.key
}

// Matches reports whether the live disk occupies this disk's controller and
// unit number. The controller must already be linked or populated so its key
// is resolvable.
func (d *Disk) Matches(live *vimtypes.VirtualDisk) bool {
	return ptr.Deref(live.UnitNumber) == d.node.Unit &&
		live.ControllerKey == d.controller.Key()
}

func (d *Disk) linkLive(live *vimtypes.VirtualDisk) {
	d.live = live
}

func (d *Disk) DiffersFromLive() bool {
	if d.live == nil {
		return true
	}
	backing, ok := d.live.Backing.(*vimtypes.VirtualDiskFlatVer2BackingInfo)
	if !ok {
		return true
	}
	return d.live.CapacityInKB != d.sizeKB ||
		backing.DiskMode != d.mode ||
		ptr.Deref(backing.ThinProvisioned) != (d.backing == DiskBackingThin) ||
		ptr.Deref(backing.EagerlyScrub) != (d.backing == DiskBackingEagerZeroed)
}

func (d *Disk) NewSpec(keys *DeviceKeyAllocator) vimtypes.BaseVirtualDeviceConfigSpec {
	d.key = keys.Next()
	disk := &vimtypes.VirtualDisk{}
	disk.Key = d.key
	backing := &vimtypes.VirtualDiskFlatVer2BackingInfo{}
	d.applyOptions(disk, backing)

	return &vimtypes.VirtualDeviceConfigSpec{
		Operation:     vimtypes.VirtualDeviceConfigSpecOperationAdd,
		FileOperation: vimtypes.VirtualDeviceConfigSpecFileOperationCreate,
		Device:        disk,
	}
}

func (d *Disk) UpdateSpec() vimtypes.BaseVirtualDeviceConfigSpec {
	disk := *d.live
	backing := &vimtypes.VirtualDiskFlatVer2BackingInfo{}
	if liveBacking, ok := d.live.Backing.(*vimtypes.VirtualDiskFlatVer2BackingInfo); ok {
		*backing = *liveBacking
	}
	d.applyOptions(&disk, backing)

	return &vimtypes.VirtualDeviceConfigSpec{
		Operation: vimtypes.VirtualDeviceConfigSpecOperationEdit,
		Device:    &disk,
	}
}

func (d *Disk) applyOptions(disk *vimtypes.VirtualDisk, backing *vimtypes.VirtualDiskFlatVer2BackingInfo) {
	if d.mode != "" {
		backing.DiskMode = d.mode
	}
	switch d.backing {
	case DiskBackingThin:
		backing.ThinProvisioned = ptr.To(true)
	case DiskBackingEagerZeroed:
		backing.EagerlyScrub = ptr.To(true)
	}
	disk.Backing = backing
	disk.ControllerKey = d.controller.Key()
	disk.UnitNumber = ptr.To(d.node.Unit)
	disk.CapacityInKB = d.sizeKB
}
