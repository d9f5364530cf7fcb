// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig_test

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconfig/pkg/util"
	"github.com/vmware-tanzu/vm-reconfig/pkg/util/ptr"
	"github.com/vmware-tanzu/vm-reconfig/pkg/vmconfig"
)

var _ = Describe("DiskController", func() {

	It("renders a paravirtual SCSI add spec with an allocated key", func() {
		keys := vmconfig.NewDeviceKeyAllocator()
		ctrl := vmconfig.NewSCSIController(1, vmconfig.SCSIControllerParams{
			Type:       vmconfig.SCSITypeParavirtual,
			BusSharing: vimtypes.VirtualSCSISharingPhysicalSharing,
		})

		spec := ctrl.NewSpec(keys).GetVirtualDeviceConfigSpec()
		Expect(spec.Operation).To(Equal(vimtypes.VirtualDeviceConfigSpecOperationAdd))

		pvscsi, ok := spec.Device.(*vimtypes.ParaVirtualSCSIController)
		Expect(ok).To(BeTrue())
		Expect(pvscsi.Key).To(Equal(int32(-100)))
		Expect(pvscsi.BusNumber).To(Equal(int32(1)))
		Expect(pvscsi.SharedBus).To(Equal(vimtypes.VirtualSCSISharingPhysicalSharing))
		Expect(pvscsi.ScsiCtlrUnitNumber).To(Equal(int32(7)))
		Expect(ctrl.Key()).To(Equal(int32(-100)))
	})

	It("defaults the SCSI model to lsilogic", func() {
		keys := vmconfig.NewDeviceKeyAllocator()
		ctrl := vmconfig.NewSCSIController(0, vmconfig.SCSIControllerParams{})

		spec := ctrl.NewSpec(keys).GetVirtualDeviceConfigSpec()
		Expect(spec.Device).To(BeAssignableToTypeOf(&vimtypes.VirtualLsiLogicController{}))
	})

	It("renders SATA controllers as AHCI devices", func() {
		keys := vmconfig.NewDeviceKeyAllocator()
		ctrl := vmconfig.NewSATAController(2)

		spec := ctrl.NewSpec(keys).GetVirtualDeviceConfigSpec()
		ahci, ok := spec.Device.(*vimtypes.VirtualAHCIController)
		Expect(ok).To(BeTrue())
		Expect(ahci.BusNumber).To(Equal(int32(2)))
	})

	It("rejects two devices on the same unit number", func() {
		ctrl := vmconfig.NewSCSIController(0, vmconfig.SCSIControllerParams{})
		node := util.DeviceNode{Category: "scsi", Bus: 0, Unit: 0}

		_, err := vmconfig.NewDisk(vmconfig.DiskParams{Size: "1gb"}, node, ctrl)
		Expect(err).ToNot(HaveOccurred())

		_, err = vmconfig.NewDisk(vmconfig.DiskParams{Size: "2gb"}, node, ctrl)
		Expect(err).To(HaveOccurred())
		Expect(vmconfig.IsParameterError(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("unit number 0"))
	})
})

var _ = Describe("Disk", func() {

	It("rejects an unparseable size", func() {
		ctrl := vmconfig.NewSCSIController(0, vmconfig.SCSIControllerParams{})
		node := util.DeviceNode{Category: "scsi", Bus: 0, Unit: 0}

		_, err := vmconfig.NewDisk(vmconfig.DiskParams{Size: "lots"}, node, ctrl)
		Expect(err).To(HaveOccurred())
		Expect(vmconfig.IsParameterError(err)).To(BeTrue())
	})

	It("renders an add spec that references its controller's key", func() {
		keys := vmconfig.NewDeviceKeyAllocator()
		ctrl := vmconfig.NewSCSIController(0, vmconfig.SCSIControllerParams{})
		ctrl.NewSpec(keys)

		node := util.DeviceNode{Category: "scsi", Bus: 0, Unit: 3}
		disk, err := vmconfig.NewDisk(vmconfig.DiskParams{
			Size:    "10gb",
			Backing: vmconfig.DiskBackingThin,
			Mode:    "persistent",
		}, node, ctrl)
		Expect(err).ToNot(HaveOccurred())

		spec := disk.NewSpec(keys).GetVirtualDeviceConfigSpec()
		Expect(spec.Operation).To(Equal(vimtypes.VirtualDeviceConfigSpecOperationAdd))
		Expect(string(spec.FileOperation)).To(Equal(string(vimtypes.VirtualDeviceConfigSpecFileOperationCreate)))

		vd, ok := spec.Device.(*vimtypes.VirtualDisk)
		Expect(ok).To(BeTrue())
		Expect(vd.Key).To(Equal(int32(-101)))
		Expect(vd.ControllerKey).To(Equal(int32(-100)))
		Expect(ptr.Deref(vd.UnitNumber)).To(Equal(int32(3)))
		Expect(vd.CapacityInKB).To(Equal(int64(10 * 1024 * 1024)))

		expectedBacking := &vimtypes.VirtualDiskFlatVer2BackingInfo{
			DiskMode:        "persistent",
			ThinProvisioned: ptr.To(true),
		}
		Expect(reflect.DeepEqual(vd.Backing, expectedBacking)).To(BeTrue(), cmp.Diff(vd.Backing, expectedBacking))
	})
})

var _ = Describe("NetworkAdapter", func() {

	It("defaults new adapters to vmxnet3 with a generated address", func() {
		keys := vmconfig.NewDeviceKeyAllocator()
		nic := vmconfig.NewNetworkAdapter(0, vmconfig.NetworkAdapterParams{
			PortgroupName: "VM Network",
		})

		spec := nic.NewSpec(keys).GetVirtualDeviceConfigSpec()
		card, ok := spec.Device.(*vimtypes.VirtualVmxnet3)
		Expect(ok).To(BeTrue())
		Expect(card.AddressType).To(Equal("generated"))

		backing, ok := card.Backing.(*vimtypes.VirtualEthernetCardNetworkBackingInfo)
		Expect(ok).To(BeTrue())
		Expect(backing.DeviceName).To(Equal("VM Network"))
	})

	It("assigns a manual MAC address when one is given", func() {
		keys := vmconfig.NewDeviceKeyAllocator()
		nic := vmconfig.NewNetworkAdapter(0, vmconfig.NetworkAdapterParams{
			AdapterType: vmconfig.AdapterTypeE1000e,
			MACAddress:  "00:50:56:aa:bb:cc",
		})

		spec := nic.NewSpec(keys).GetVirtualDeviceConfigSpec()
		card, ok := spec.Device.(*vimtypes.VirtualE1000e)
		Expect(ok).To(BeTrue())
		Expect(card.AddressType).To(Equal("manual"))
		Expect(card.MacAddress).To(Equal("00:50:56:aa:bb:cc"))
	})
})
