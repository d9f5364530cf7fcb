// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vmware-tanzu/vm-reconfig/pkg/vmconfig"
)

var _ = Describe("DeviceKeyAllocator", func() {
	It("hands out descending negative keys starting at -100", func() {
		keys := vmconfig.NewDeviceKeyAllocator()
		Expect(keys.Next()).To(Equal(int32(-100)))
		Expect(keys.Next()).To(Equal(int32(-101)))
		Expect(keys.Next()).To(Equal(int32(-102)))
	})
})

var _ = Describe("DeviceTracker", func() {
	It("translates 1-based spec positions back to devices", func() {
		tracker := vmconfig.NewDeviceTracker()
		first := vmconfig.NewNetworkAdapter(0, vmconfig.NetworkAdapterParams{})
		second := vmconfig.NewNetworkAdapter(1, vmconfig.NetworkAdapterParams{})
		tracker.Track(first)
		tracker.Track(second)

		dev, err := tracker.Translate(2)
		Expect(err).ToNot(HaveOccurred())
		Expect(dev.Name()).To(Equal(second.Name()))
		Expect(tracker.Len()).To(Equal(2))
	})

	It("rejects positions that were never tracked", func() {
		tracker := vmconfig.NewDeviceTracker()
		_, err := tracker.Translate(1)
		Expect(err).To(HaveOccurred())
		Expect(vmconfig.IsInternalError(err)).To(BeTrue())

		_, err = tracker.Translate(0)
		Expect(vmconfig.IsInternalError(err)).To(BeTrue())
	})
})
