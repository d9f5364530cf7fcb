// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package util_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vmware-tanzu/vm-reconfig/pkg/util"
)

var _ = Describe("ParseSizeAsKB", func() {

	DescribeTable("valid sizes",
		func(in string, expected int64) {
			actual, err := util.ParseSizeAsKB(in)
			Expect(err).ToNot(HaveOccurred())
			Expect(actual).To(Equal(expected))
		},
		Entry("kilobytes", "512kb", int64(512)),
		Entry("megabytes", "10mb", int64(10*1024)),
		Entry("gigabytes", "4gb", int64(4*1024*1024)),
		Entry("terabytes", "1tb", int64(1024*1024*1024)),
		Entry("upper-case unit", "10MB", int64(10*1024)),
		Entry("mixed-case unit", "10Gb", int64(10*1024*1024)),
		Entry("fractional magnitude", "0.5mb", int64(512)),
		Entry("fractional gigabytes", "1.5gb", int64(1024*1024+512*1024)),
		Entry("surrounding whitespace", "  40gb  ", int64(40*1024*1024)),
		Entry("zero", "0gb", int64(0)),
	)

	DescribeTable("invalid sizes",
		func(in string, expectedErr error) {
			_, err := util.ParseSizeAsKB(in)
			Expect(err).To(HaveOccurred())
			Expect(err).To(MatchError(expectedErr))
		},
		Entry("empty string", "", util.ErrEmptySize),
		Entry("only whitespace", "   ", util.ErrEmptySize),
		Entry("missing unit", "512", util.ErrMissingSizeUnit),
		Entry("unsupported unit", "512pb", util.ErrUnsupportedSizeUnit),
		Entry("bogus unit", "512quarts", util.ErrUnsupportedSizeUnit),
		Entry("missing magnitude", "gb", util.ErrInvalidSizeMagnitude),
		Entry("malformed magnitude", "1.2.3gb", util.ErrInvalidSizeMagnitude),
	)
})
