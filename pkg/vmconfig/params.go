// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// ConfigRequest is the full declared hardware configuration for one VM. It
// is constructed once per reconciliation and never mutated by the engine.
// Nil pointers and nil slices mean the caller has no opinion about that
// parameter group; the corresponding live state is left untouched.
type ConfigRequest struct {
	// Name is the VM display name. Required for creation.
	Name string

	// GuestID is the guest operating system identifier. Required for
	// creation.
	GuestID string

	// Datastore is the name of the datastore that backs the VM's files.
	// Required for creation.
	Datastore string

	// AllowPowerCycle permits changes that require the VM to be powered
	// off. Without it such changes fail with a PowerCycleRequiredError.
	AllowPowerCycle bool

	CPU      *CPUParams
	Memory   *MemoryParams
	Disks    []DiskParams
	CDROMs   []CdromParams
	NVDIMMs  []NVDIMMParams
	NetworkAdapters []NetworkAdapterParams

	SCSIControllers []SCSIControllerParams
	NVMEControllers []NVMEControllerParams
	// SATAControllerCount is the number of SATA controllers to manage.
	// SATA controllers have no configurable options beyond their count.
	SATAControllerCount *int32

	// RemoveUnmanagedNVDIMMs removes live NVDIMM devices that no entry in
	// NVDIMMs claims. When false unmanaged NVDIMMs are left in place.
	RemoveUnmanagedNVDIMMs bool

	VMOptions *VMOptionsParams
}

// CPUParams declares the CPU topology and resource allocation.
type CPUParams struct {
	Cores          *int32
	CoresPerSocket *int32

	EnableHotAdd              *bool
	EnableHotRemove           *bool
	EnablePerformanceCounters *bool

	// Shares sets a custom share count and implies a custom shares level.
	Shares      *int32
	SharesLevel vimtypes.SharesLevel
	// Limit and Reservation are in MHz.
	Limit       *int64
	Reservation *int64
}

// MemoryParams declares the memory size and resource allocation. Memory can
// only grow; a size below the live value is rejected during validation.
type MemoryParams struct {
	SizeMB *int64

	EnableHotAdd *bool

	Shares      *int32
	SharesLevel vimtypes.SharesLevel
	// Limit and Reservation are in MB.
	Limit       *int64
	Reservation *int64

	// ReserveAllMemory locks the full memory reservation to the VM's
	// configured size.
	ReserveAllMemory *bool
}

// SCSIControllerParams declares one SCSI controller. Controllers take their
// bus number from their position in the request slice.
type SCSIControllerParams struct {
	// Type selects the controller model: lsilogic, lsilogicsas,
	// paravirtual, or buslogic.
	Type string

	BusSharing vimtypes.VirtualSCSISharing

	EnableHotAddRemove *bool
}

// NVMEControllerParams declares one NVMe controller.
type NVMEControllerParams struct {
	BusSharing string
}

// DiskParams declares one virtual disk.
type DiskParams struct {
	// DeviceNode places the disk on a controller, e.g. "SCSI(0:0)".
	DeviceNode string

	// Size is a human readable size string such as "100gb", converted to
	// kilobytes with base-1024 units.
	Size string

	// Backing selects provisioning: thin, thick, or eagerzeroedthick.
	Backing string

	// Mode is the disk persistence mode, e.g. "persistent".
	Mode string
}

// CdromParams declares one CD-ROM drive. Only SATA and IDE device nodes are
// legal for CD-ROMs.
type CdromParams struct {
	DeviceNode string

	// ISOMediaPath mounts a datastore ISO. Mutually exclusive with
	// ClientDeviceMode.
	ISOMediaPath string

	// ClientDeviceMode is "emulated" or "passthrough" for client backed
	// drives. Defaults to passthrough when neither it nor ISOMediaPath is
	// set.
	ClientDeviceMode string

	ConnectAtPowerOn *bool
}

// NVDIMMParams declares one NVDIMM module. The NVDIMM controller is
// implicit; it is synthesized exactly once when at least one NVDIMM is
// declared.
type NVDIMMParams struct {
	SizeMB int64
}

// NetworkAdapterParams declares one network adapter. Live adapters carry no
// stable identity, so adapters are matched to live devices in declaration
// order.
type NetworkAdapterParams struct {
	// PortgroupName is the standard vSwitch portgroup backing this
	// adapter.
	PortgroupName string

	// AdapterType selects the card model: vmxnet3, e1000, e1000e,
	// pcnet32, vmxnet2, or sriov. Empty means any existing type is
	// acceptable and new adapters default to vmxnet3.
	AdapterType string

	// MACAddress is a literal address, or "automatic" for a generated
	// one.
	MACAddress string

	ConnectAtPowerOn *bool
	Connected        *bool
}

// VMOptionsParams declares firmware, security, and console options.
type VMOptionsParams struct {
	// MaxRemoteConsoleSessions limits concurrent console connections,
	// 0 to 40.
	MaxRemoteConsoleSessions *int32

	// EncryptedVMotion is one of the vimtypes.VirtualMachineConfigSpecEncryptedVMotionModes
	// values.
	EncryptedVMotion string

	// EncryptedFT is one of the vimtypes.VirtualMachineConfigSpecEncryptedFtModes
	// values.
	EncryptedFT string

	EnableEncryption *bool

	// EnableNestedVirtualization exposes hardware assisted virtualization
	// to the guest.
	EnableNestedVirtualization *bool

	EnableIOMMU *bool

	// EnableVBS turns on Virtualization Based Security, which requires
	// EFI firmware, secure boot, and nested virtualization.
	EnableVBS *bool

	EnableSecureBoot *bool

	// BootFirmware is "bios" or "efi".
	BootFirmware string
}
