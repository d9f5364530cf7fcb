// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package util_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vmware-tanzu/vm-reconfig/pkg/util"
)

var _ = Describe("ParseDeviceNode", func() {

	DescribeTable("valid nodes",
		func(in string, expected util.DeviceNode) {
			actual, err := util.ParseDeviceNode(in)
			Expect(err).ToNot(HaveOccurred())
			Expect(actual).To(Equal(expected))
		},
		Entry("scsi", "SCSI(0:0)", util.DeviceNode{Category: "scsi", Bus: 0, Unit: 0}),
		Entry("sata", "SATA(1:2)", util.DeviceNode{Category: "sata", Bus: 1, Unit: 2}),
		Entry("nvme", "NVME(0:7)", util.DeviceNode{Category: "nvme", Bus: 0, Unit: 7}),
		Entry("ide", "IDE(0:1)", util.DeviceNode{Category: "ide", Bus: 0, Unit: 1}),
		Entry("lower-case category", "scsi(2:15)", util.DeviceNode{Category: "scsi", Bus: 2, Unit: 15}),
		Entry("internal whitespace", " SCSI ( 0 : 3 ) ", util.DeviceNode{Category: "scsi", Bus: 0, Unit: 3}),
	)

	DescribeTable("malformed nodes",
		func(in string) {
			_, err := util.ParseDeviceNode(in)
			Expect(err).To(MatchError(util.ErrMalformedDeviceNode))
		},
		Entry("empty string", ""),
		Entry("missing parens", "SCSI 0:0"),
		Entry("missing unit", "SCSI(0)"),
		Entry("negative bus", "SCSI(-1:0)"),
		Entry("non-numeric unit", "SCSI(0:x)"),
		Entry("trailing garbage", "SCSI(0:0) extra"),
		Entry("numeric category", "123(0:0)"),
	)

	It("round-trips through String", func() {
		n, err := util.ParseDeviceNode("SATA(1:2)")
		Expect(err).ToNot(HaveOccurred())
		Expect(n.String()).To(Equal("sata(1:2)"))
	})
})
