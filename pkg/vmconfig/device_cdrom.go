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

// Client device modes for CD-ROM drives without ISO media.
const (
	CdromModeEmulated    = "emulated"
	CdromModePassthrough = "passthrough"
)

// liveCdrom is a snapshot of an existing CD-ROM device.
type liveCdrom struct {
	key            int32
	isoPath        string
	clientMode     string
	startConnected bool
	device         *vimtypes.VirtualCdrom
}

// Cdrom is one desired CD-ROM drive, attached to a SATA or IDE controller.
type Cdrom struct {
	node             util.DeviceNode
	isoPath          string
	clientMode       string
	connectAtPowerOn *bool
	controller       *DiskController

	key  int32
	live *liveCdrom
}

// NewCdrom builds the desired CD-ROM described by params, attaching it to
// the controller its device node names.
func NewCdrom(params CdromParams, node util.DeviceNode, controller *DiskController) (*Cdrom, error) {
	switch params.ClientDeviceMode {
	case "", CdromModeEmulated, CdromModePassthrough:
	default:
		return nil, ParameterError{
			Parameter: "cdroms",
			Message: fmt.Sprintf(
				"client_device_mode for device %s must be %q or %q, got %q",
				node.String(), CdromModeEmulated, CdromModePassthrough, params.ClientDeviceMode),
		}
	}

	c := &Cdrom{
		node:             node,
		isoPath:          params.ISOMediaPath,
		clientMode:       params.ClientDeviceMode,
		connectAtPowerOn: params.ConnectAtPowerOn,
		controller:       controller,
	}
	if err := controller.AttachDevice(node.Unit, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cdrom) Name() string {
	return fmt.Sprintf("CD-ROM - %s Unit %d", c.controller.Name(), c.node.Unit)
}

func (c *Cdrom) Kind() DeviceKind {
	return DeviceKindCdrom
}

func (c *Cdrom) Linked() bool {
	return c.live != nil
}

func (c *Cdrom) Key() int32 {
	if c.live != nil {
		return c.live.key
	}
	return c.key
}

// Matches reports whether the live CD-ROM occupies this drive's controller
// and unit number.
func (c *Cdrom) Matches(live *vimtypes.VirtualCdrom) bool {
	return ptr.Deref(live.UnitNumber) == c.node.Unit &&
		live.ControllerKey == c.controller.Key()
}

func (c *Cdrom) linkLive(dev *vimtypes.VirtualCdrom) error {
	live := &liveCdrom{key: dev.Key, device: dev}
	switch backing := dev.Backing.(type) {
	case *vimtypes.VirtualCdromIsoBackingInfo:
		live.isoPath = backing.FileName
	case *vimtypes.VirtualCdromRemoteAtapiBackingInfo:
		live.clientMode = CdromModeEmulated
	case *vimtypes.VirtualCdromRemotePassthroughBackingInfo:
		live.clientMode = CdromModePassthrough
	default:
		return DeviceLinkError{
			Device: c.Name(),
			Message: "unexpected CD-ROM backing on VM device, unable to determine " +
				"client device mode and ISO media path",
		}
	}
	if dev.Connectable != nil {
		live.startConnected = dev.Connectable.StartConnected
	}
	c.live = live
	return nil
}

func (c *Cdrom) DiffersFromLive() bool {
	if c.live == nil {
		return true
	}
	if c.isoPath != "" && c.isoPath != c.live.isoPath {
		return true
	}
	if c.clientMode != "" && c.clientMode != c.live.clientMode {
		return true
	}
	// Connection state only matters when media is attached.
	if c.isoPath != "" && c.connectAtPowerOn != nil &&
		*c.connectAtPowerOn != c.live.startConnected {
		return true
	}
	return false
}

func (c *Cdrom) NewSpec(keys *DeviceKeyAllocator) vimtypes.BaseVirtualDeviceConfigSpec {
	c.key = keys.Next()
	dev := &vimtypes.VirtualCdrom{}
	dev.Key = c.key
	dev.Connectable = &vimtypes.VirtualDeviceConnectInfo{AllowGuestControl: true}
	if c.isoPath == "" && c.clientMode == "" {
		dev.Backing = &vimtypes.VirtualCdromRemotePassthroughBackingInfo{}
	}
	c.applyOptions(dev)

	return &vimtypes.VirtualDeviceConfigSpec{
		Operation: vimtypes.VirtualDeviceConfigSpecOperationAdd,
		Device:    dev,
	}
}

func (c *Cdrom) UpdateSpec() vimtypes.BaseVirtualDeviceConfigSpec {
	dev := *c.live.device
	if dev.Connectable != nil {
		connectable := *dev.Connectable
		dev.Connectable = &connectable
	} else {
		dev.Connectable = &vimtypes.VirtualDeviceConnectInfo{AllowGuestControl: true}
	}
	c.applyOptions(&dev)

	return &vimtypes.VirtualDeviceConfigSpec{
		Operation: vimtypes.VirtualDeviceConfigSpecOperationEdit,
		Device:    &dev,
	}
}

func (c *Cdrom) applyOptions(dev *vimtypes.VirtualCdrom) {
	if c.connectAtPowerOn != nil {
		dev.Connectable.StartConnected = *c.connectAtPowerOn
	}
	dev.ControllerKey = c.controller.Key()
	dev.UnitNumber = ptr.To(c.node.Unit)

	switch {
	case c.isoPath != "":
		dev.Backing = &vimtypes.VirtualCdromIsoBackingInfo{
			VirtualDeviceFileBackingInfo: vimtypes.VirtualDeviceFileBackingInfo{
				FileName: c.isoPath,
			},
		}
	case c.clientMode == CdromModeEmulated:
		dev.Backing = &vimtypes.VirtualCdromRemoteAtapiBackingInfo{}
	case c.clientMode == CdromModePassthrough:
		dev.Backing = &vimtypes.VirtualCdromRemotePassthroughBackingInfo{}
	}
}
