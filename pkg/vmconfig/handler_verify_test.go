// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("VerifyParameterConstraints idempotence", func() {

	It("parses the declared device set exactly once", func() {
		req := &ConfigRequest{
			SCSIControllers: []SCSIControllerParams{{Type: "paravirtual"}},
			Disks: []DiskParams{
				{DeviceNode: "SCSI(0:0)", Size: "10gb", Backing: DiskBackingThin, Mode: "persistent"},
			},
		}
		tracker := NewDeviceTracker()
		keys := NewDeviceKeyAllocator()
		scsi := newSCSIControllerHandler(req, NewChangeSet(nil, false), tracker, keys)
		resolver := controllerResolver{handlers: []*diskControllerHandler{scsi}}
		disks := newDiskHandler(req, NewChangeSet(nil, false), tracker, keys, resolver)

		Expect(scsi.VerifyParameterConstraints()).To(Succeed())
		Expect(disks.VerifyParameterConstraints()).To(Succeed())
		Expect(scsi.Controllers()).To(HaveLen(1))
		Expect(disks.disks).To(HaveLen(1))
		first := disks.disks[0]

		Expect(scsi.VerifyParameterConstraints()).To(Succeed())
		Expect(disks.VerifyParameterConstraints()).To(Succeed())
		Expect(scsi.Controllers()).To(HaveLen(1))
		Expect(disks.disks).To(HaveLen(1))
		Expect(disks.disks[0]).To(BeIdenticalTo(first))
	})
})
