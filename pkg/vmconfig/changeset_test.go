// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/vmware/govmomi/vim25/mo"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconfig/pkg/util/ptr"
	"github.com/vmware-tanzu/vm-reconfig/pkg/vmconfig"
)

func poweredVM(on bool) *mo.VirtualMachine {
	state := vimtypes.VirtualMachinePowerStatePoweredOff
	if on {
		state = vimtypes.VirtualMachinePowerStatePoweredOn
	}
	return &mo.VirtualMachine{
		Runtime: vimtypes.VirtualMachineRuntimeInfo{
			PowerState: state,
		},
	}
}

var _ = Describe("ChangeSet", func() {

	Describe("Check", func() {
		It("is in sync during creation", func() {
			cs := vmconfig.NewChangeSet(nil, false)
			Expect(vmconfig.Check(cs, "cpu.cores", ptr.To(int32(4)), nil, true)).
				To(Equal(vmconfig.OutcomeInSync))
			Expect(cs.Changed).To(BeEmpty())
		})

		It("is in sync when the desired value is unset", func() {
			cs := vmconfig.NewChangeSet(poweredVM(false), false)
			Expect(vmconfig.Check(cs, "cpu.cores", nil, ptr.To(int32(4)), true)).
				To(Equal(vmconfig.OutcomeInSync))
		})

		It("is in sync when live matches desired", func() {
			cs := vmconfig.NewChangeSet(poweredVM(true), false)
			Expect(vmconfig.Check(cs, "cpu.cores", ptr.To(int32(4)), ptr.To(int32(4)), true)).
				To(Equal(vmconfig.OutcomeInSync))
		})

		It("records a change on a powered off VM", func() {
			cs := vmconfig.NewChangeSet(poweredVM(false), false)
			Expect(vmconfig.Check(cs, "cpu.cores", ptr.To(int32(4)), ptr.To(int32(2)), true)).
				To(Equal(vmconfig.OutcomeChanged))
			Expect(cs.Changed).To(HaveKey("cpu.cores"))
			Expect(cs.Changed["cpu.cores"].Old).To(Equal(int32(2)))
			Expect(cs.Changed["cpu.cores"].New).To(Equal(int32(4)))
		})

		It("flags power sensitive changes on a powered on VM without recording them", func() {
			cs := vmconfig.NewChangeSet(poweredVM(true), false)
			Expect(vmconfig.Check(cs, "cpu.cores", ptr.To(int32(4)), ptr.To(int32(2)), true)).
				To(Equal(vmconfig.OutcomeRequiresPowerCycle))
			Expect(cs.Changed).To(BeEmpty())
		})

		It("records power insensitive changes on a powered on VM", func() {
			cs := vmconfig.NewChangeSet(poweredVM(true), false)
			Expect(vmconfig.Check(cs, "name", ptr.To("new"), ptr.To("old"), false)).
				To(Equal(vmconfig.OutcomeChanged))
			Expect(cs.Changed).To(HaveKey("name"))
		})
	})

	Describe("Compare", func() {
		It("fails a power sensitive change when power cycling is not allowed", func() {
			cs := vmconfig.NewChangeSet(poweredVM(true), false)
			err := vmconfig.Compare(cs, "cpu.cores_per_socket", ptr.To(int32(2)), ptr.To(int32(1)), true)
			Expect(err).To(HaveOccurred())
			Expect(vmconfig.IsPowerCycleRequiredError(err)).To(BeTrue())
			Expect(cs.PowerCycleRequired).To(BeFalse())
		})

		It("records the change and raises the flag when power cycling is allowed", func() {
			cs := vmconfig.NewChangeSet(poweredVM(true), true)
			err := vmconfig.Compare(cs, "cpu.cores_per_socket", ptr.To(int32(2)), ptr.To(int32(1)), true)
			Expect(err).ToNot(HaveOccurred())
			Expect(cs.PowerCycleRequired).To(BeTrue())
			Expect(cs.Changed).To(HaveKey("cpu.cores_per_socket"))
		})
	})

	Describe("Required", func() {
		It("is always true during creation", func() {
			Expect(vmconfig.NewChangeSet(nil, false).Required()).To(BeTrue())
		})

		It("is false for an empty change set on an existing VM", func() {
			Expect(vmconfig.NewChangeSet(poweredVM(false), false).Required()).To(BeFalse())
		})

		It("is true once a parameter change is recorded", func() {
			cs := vmconfig.NewChangeSet(poweredVM(false), false)
			vmconfig.Record(cs, "memory.size_mb", ptr.To(int64(1024)), ptr.To(int64(2048)))
			Expect(cs.Required()).To(BeTrue())
		})

		It("is true once a removal is queued", func() {
			cs := vmconfig.NewChangeSet(poweredVM(false), false)
			cs.ToRemove = append(cs.ToRemove, &vimtypes.VirtualE1000{})
			Expect(cs.Required()).To(BeTrue())
		})
	})

	Describe("Propagate", func() {
		It("merges changes, devices, and the power cycle flag", func() {
			master := vmconfig.NewChangeSet(poweredVM(false), true)
			other := vmconfig.NewChangeSet(poweredVM(false), true)
			vmconfig.Record(other, "memory.size_mb", ptr.To(int64(1024)), ptr.To(int64(2048)))
			other.ToRemove = append(other.ToRemove, &vimtypes.VirtualE1000{})
			other.PowerCycleRequired = true

			master.Propagate(other)
			Expect(master.Changed).To(HaveKey("memory.size_mb"))
			Expect(master.ToRemove).To(HaveLen(1))
			Expect(master.PowerCycleRequired).To(BeTrue())
		})
	})
})
