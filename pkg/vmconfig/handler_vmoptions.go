// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconfig/pkg/util/ptr"
)

// Boot firmware values.
const (
	FirmwareBIOS = "bios"
	FirmwareEFI  = "efi"
)

const maxRemoteConsoleSessions = 40

type vmOptionsHandler struct {
	params *VMOptionsParams
	cs     *ChangeSet
}

func newVMOptionsHandler(req *ConfigRequest, cs *ChangeSet) *vmOptionsHandler {
	return &vmOptionsHandler{
		params: req.VMOptions,
		cs:     cs,
	}
}

func (h *vmOptionsHandler) Name() string {
	return "vm_options"
}

func (h *vmOptionsHandler) ChangeSet() *ChangeSet {
	return h.cs
}

func (h *vmOptionsHandler) VerifyParameterConstraints() error {
	if h.params == nil {
		return nil
	}

	if sessions := h.params.MaxRemoteConsoleSessions; sessions != nil {
		if *sessions < 0 || *sessions > maxRemoteConsoleSessions {
			return ParameterError{
				Parameter: "vm_options.maximum_remote_console_sessions",
				Message:   "maximum remote console sessions must be between 0 and 40",
			}
		}
	}

	if err := h.verifyVirtualizationBasedSecurity(); err != nil {
		return err
	}
	return h.verifyEncryption()
}

// effectiveBootFirmware returns the firmware value that would exist after
// the reconciliation completes.
func (h *vmOptionsHandler) effectiveBootFirmware() string {
	if h.params.BootFirmware != "" {
		return h.params.BootFirmware
	}
	if vm := h.cs.VM(); vm != nil {
		return vm.Config.Firmware
	}
	return ""
}

// effectiveSecureBoot returns the secure boot state that would exist after
// the reconciliation completes.
func (h *vmOptionsHandler) effectiveSecureBoot() bool {
	if h.params.EnableSecureBoot != nil {
		return *h.params.EnableSecureBoot
	}
	if vm := h.cs.VM(); vm != nil && vm.Config.BootOptions != nil {
		return ptr.Deref(vm.Config.BootOptions.EfiSecureBootEnabled)
	}
	return false
}

func (h *vmOptionsHandler) verifyVirtualizationBasedSecurity() error {
	enableVBS := h.params.EnableVBS
	if enableVBS == nil && h.cs.VM() != nil {
		enableVBS = h.cs.VM().Config.Flags.VbsEnabled
	}
	if !ptr.Deref(enableVBS) {
		return nil
	}

	nestedHV := h.params.EnableNestedVirtualization
	if nestedHV == nil && h.cs.VM() != nil {
		nestedHV = h.cs.VM().Config.NestedHVEnabled
	}

	if h.effectiveBootFirmware() != FirmwareEFI || !h.effectiveSecureBoot() || !ptr.Deref(nestedHV) {
		return ParameterError{
			Parameter: "vm_options.enable_virtual_based_security",
			Message: "Virtualization Based Security requires EFI boot firmware, " +
				"secure boot, and hardware assisted virtualization",
		}
	}
	return nil
}

func (h *vmOptionsHandler) verifyEncryption() error {
	enableEncryption := h.params.EnableEncryption
	if enableEncryption == nil && h.cs.VM() != nil {
		enableEncryption = h.cs.VM().Config.SevEnabled
	}
	if !ptr.Deref(enableEncryption) {
		return nil
	}

	if h.effectiveSecureBoot() || h.effectiveBootFirmware() == FirmwareBIOS {
		return ParameterError{
			Parameter: "vm_options.enable_encryption",
			Message:   "encryption requires EFI boot firmware and disabled secure boot",
		}
	}
	return nil
}

func (h *vmOptionsHandler) CompareLiveConfigWithDesiredConfig() error {
	if h.params == nil || h.cs.VM() == nil {
		return nil
	}
	config := h.cs.VM().Config

	if err := Compare(h.cs, "vm_options.maximum_remote_console_sessions",
		h.params.MaxRemoteConsoleSessions, &config.MaxMksConnections, true); err != nil {
		return err
	}
	if err := Compare(h.cs, "vm_options.enable_encryption",
		h.params.EnableEncryption, config.SevEnabled, true); err != nil {
		return err
	}
	if err := Compare(h.cs, "vm_options.enable_hardware_assisted_virtualization",
		h.params.EnableNestedVirtualization, config.NestedHVEnabled, true); err != nil {
		return err
	}

	var firmware *string
	if h.params.BootFirmware != "" {
		firmware = &h.params.BootFirmware
	}
	if err := Compare(h.cs, "vm_options.boot_firmware", firmware, &config.Firmware, true); err != nil {
		return err
	}

	var encryptedVMotion, encryptedFT *string
	if h.params.EncryptedVMotion != "" {
		encryptedVMotion = &h.params.EncryptedVMotion
	}
	if h.params.EncryptedFT != "" {
		encryptedFT = &h.params.EncryptedFT
	}
	if err := Compare(h.cs, "vm_options.encrypted_vmotion",
		encryptedVMotion, &config.MigrateEncryption, false); err != nil {
		return err
	}
	if err := Compare(h.cs, "vm_options.encrypted_fault_tolerance",
		encryptedFT, &config.FtEncryptionMode, false); err != nil {
		return err
	}

	if err := Compare(h.cs, "vm_options.enable_io_mmu",
		h.params.EnableIOMMU, config.Flags.VvtdEnabled, false); err != nil {
		return err
	}
	if err := Compare(h.cs, "vm_options.enable_virtual_based_security",
		h.params.EnableVBS, config.Flags.VbsEnabled, false); err != nil {
		return err
	}

	var liveSecureBoot *bool
	if config.BootOptions != nil {
		liveSecureBoot = config.BootOptions.EfiSecureBootEnabled
	}
	return Compare(h.cs, "vm_options.enable_secure_boot",
		h.params.EnableSecureBoot, liveSecureBoot, false)
}

func (h *vmOptionsHandler) PopulateConfigSpec(configSpec *vimtypes.VirtualMachineConfigSpec) {
	if h.params == nil {
		return
	}

	if h.params.MaxRemoteConsoleSessions != nil {
		configSpec.MaxMksConnections = *h.params.MaxRemoteConsoleSessions
	}
	if h.params.EncryptedVMotion != "" {
		configSpec.MigrateEncryption = h.params.EncryptedVMotion
	}
	if h.params.EncryptedFT != "" {
		configSpec.FtEncryptionMode = h.params.EncryptedFT
	}
	configSpec.SevEnabled = h.params.EnableEncryption
	configSpec.NestedHVEnabled = h.params.EnableNestedVirtualization
	if h.params.BootFirmware != "" {
		configSpec.Firmware = h.params.BootFirmware
	}

	if h.params.EnableIOMMU != nil || h.params.EnableVBS != nil {
		if configSpec.Flags == nil {
			configSpec.Flags = &vimtypes.VirtualMachineFlagInfo{}
		}
		configSpec.Flags.VvtdEnabled = h.params.EnableIOMMU
		configSpec.Flags.VbsEnabled = h.params.EnableVBS
	}

	if h.params.EnableSecureBoot != nil {
		if configSpec.BootOptions == nil {
			configSpec.BootOptions = &vimtypes.VirtualMachineBootOptions{}
		}
		configSpec.BootOptions.EfiSecureBootEnabled = h.params.EnableSecureBoot
	}
}
