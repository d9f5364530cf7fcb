// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconfig/pkg/util"
)

// DeviceKind classifies a live virtual device into the closed set of device
// families this package manages. Devices are classified once, when the live
// hardware list is walked, and then routed to handlers by kind.
type DeviceKind int

const (
	// DeviceKindUnknown marks devices this package does not manage, such
	// as video cards or USB controllers. They are left untouched.
	DeviceKindUnknown DeviceKind = iota
	DeviceKindSCSIController
	DeviceKindSATAController
	DeviceKindNVMEController
	DeviceKindIDEController
	DeviceKindNVDIMMController
	DeviceKindDisk
	DeviceKindCdrom
	DeviceKindNVDIMM
	DeviceKindNetworkAdapter
)

func (k DeviceKind) String() string {
	switch k {
	case DeviceKindSCSIController:
		return "scsi-controller"
	case DeviceKindSATAController:
		return "sata-controller"
	case DeviceKindNVMEController:
		return "nvme-controller"
	case DeviceKindIDEController:
		return "ide-controller"
	case DeviceKindNVDIMMController:
		return "nvdimm-controller"
	case DeviceKindDisk:
		return "disk"
	case DeviceKindCdrom:
		return "cdrom"
	case DeviceKindNVDIMM:
		return "nvdimm"
	case DeviceKindNetworkAdapter:
		return "network-adapter"
	default:
		return "unknown"
	}
}

// IsController reports whether the kind is one of the controller families.
func (k DeviceKind) IsController() bool {
	switch k {
	case DeviceKindSCSIController, DeviceKindSATAController,
		DeviceKindNVMEController, DeviceKindIDEController,
		DeviceKindNVDIMMController:
		return true
	default:
		return false
	}
}

// ClassifyDevice maps a live virtual device to its DeviceKind. Concrete
// types are matched before the controller interfaces so that, for example,
// an NVDIMM controller is not mistaken for a generic controller. Ethernet
// cards are recognized by their concrete model types.
func ClassifyDevice(dev vimtypes.BaseVirtualDevice) DeviceKind {
	switch dev.(type) {
	case *vimtypes.VirtualDisk:
		return DeviceKindDisk
	case *vimtypes.VirtualCdrom:
		return DeviceKindCdrom
	case *vimtypes.VirtualNVDIMM:
		return DeviceKindNVDIMM
	case *vimtypes.VirtualNVDIMMController:
		return DeviceKindNVDIMMController
	case *vimtypes.VirtualIDEController:
		return DeviceKindIDEController
	case *vimtypes.VirtualNVMEController:
		return DeviceKindNVMEController
	case vimtypes.BaseVirtualSCSIController:
		return DeviceKindSCSIController
	case vimtypes.BaseVirtualSATAController:
		return DeviceKindSATAController
	default:
		if util.IsEthernetCard(dev) {
			return DeviceKindNetworkAdapter
		}
		return DeviceKindUnknown
	}
}
