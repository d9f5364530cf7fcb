// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"

	"github.com/google/uuid"
	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// metadataHandler manages the VM's identity: display name, guest operating
// system, and the datastore its files live on.
type metadataHandler struct {
	name      string
	guestID   string
	datastore string
	cs        *ChangeSet
}

func newMetadataHandler(req *ConfigRequest, cs *ChangeSet) *metadataHandler {
	return &metadataHandler{
		name:      req.Name,
		guestID:   req.GuestID,
		datastore: req.Datastore,
		cs:        cs,
	}
}

func (h *metadataHandler) Name() string {
	return "metadata"
}

func (h *metadataHandler) ChangeSet() *ChangeSet {
	return h.cs
}

func (h *metadataHandler) VerifyParameterConstraints() error {
	if h.cs.VM() != nil {
		return nil
	}
	for param, value := range map[string]string{
		"name":      h.name,
		"guest_id":  h.guestID,
		"datastore": h.datastore,
	} {
		if value == "" {
			return ParameterError{
				Parameter: param,
				Message:   fmt.Sprintf("%s is a required parameter for VM creation", param),
			}
		}
	}
	return nil
}

func (h *metadataHandler) CompareLiveConfigWithDesiredConfig() error {
	if h.cs.VM() == nil {
		return nil
	}

	var name, guestID *string
	if h.name != "" {
		name = &h.name
	}
	if h.guestID != "" {
		guestID = &h.guestID
	}
	if err := Compare(h.cs, "name", name, &h.cs.VM().Name, false); err != nil {
		return err
	}
	return Compare(h.cs, "guest_id", guestID, &h.cs.VM().Config.GuestId, false)
}

func (h *metadataHandler) PopulateConfigSpec(configSpec *vimtypes.VirtualMachineConfigSpec) {
	switch {
	case h.name != "":
		configSpec.Name = h.name
	case h.cs.VM() != nil:
		configSpec.Name = h.cs.VM().Name
	}

	if h.cs.VM() == nil {
		configSpec.Files = &vimtypes.VirtualMachineFileInfo{
			VmPathName: fmt.Sprintf("[%s]", h.datastore),
		}
		configSpec.InstanceUuid = uuid.NewString()
	}

	if h.guestID != "" {
		configSpec.GuestId = h.guestID
	}
}
