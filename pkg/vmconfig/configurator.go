// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/vmware/govmomi/vim25/mo"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/vmware-tanzu/vm-reconfig/pkg/metrics"
	"github.com/vmware-tanzu/vm-reconfig/pkg/util"
)

// configurationPhase tracks how far a Configurator has progressed. The
// phases are strictly ordered and none of them is re-entrant.
type configurationPhase int

const (
	phaseCreated configurationPhase = iota
	phaseValidated
	phaseStaged
	phaseApplied

	// phaseFailed is terminal. A configurator whose prepare or stage call
	// returned an error accepts no further calls; comparisons are not
	// re-runnable because handlers accumulate into their change sets.
	phaseFailed
)

func (p configurationPhase) String() string {
	switch p {
	case phaseValidated:
		return "validated"
	case phaseStaged:
		return "staged"
	case phaseApplied:
		return "applied"
	case phaseFailed:
		return "failed"
	default:
		return "created"
	}
}

// Configurator drives one hardware reconciliation pass for a single VM. It
// validates the request, links live devices to the desired configuration,
// stages the differences, and finally renders the config spec that brings
// the VM in line with the request.
//
// A Configurator is single use. Build a new one for every reconciliation.
type Configurator struct {
	req ConfigRequest
	vm  *mo.VirtualMachine

	log     logr.Logger
	metrics *metrics.ReconfigMetrics

	tracker *DeviceTracker
	keys    *DeviceKeyAllocator
	master  *ChangeSet

	// handlers holds every handler in verification and population order.
	// Controller handlers come first so the controllers the disk, CD-ROM,
	// and NVDIMM handlers attach to exist before they are resolved, and so
	// controller add specs precede the specs of the devices they carry.
	handlers []Handler
	byKind   map[DeviceKind]DeviceLinkedHandler

	// toRemove queues live devices no handler claimed during the device
	// walk. The queue is central so removal specs always lead the device
	// change list regardless of which handler disowned the device.
	toRemove []vimtypes.BaseVirtualDevice

	phase configurationPhase
}

// NewConfigurator builds a configurator for the given request against the
// given live VM. A nil vm means the VM is being created and every handler
// treats its parameters as the complete desired state. The logger is taken
// from ctx and tagged with a unique reconcile ID.
func NewConfigurator(ctx context.Context, req ConfigRequest, vm *mo.VirtualMachine) *Configurator {
	c := &Configurator{
		req:     req,
		vm:      vm,
		log:     logr.FromContextOrDiscard(ctx).WithValues("reconcileID", uuid.NewString()),
		metrics: metrics.NewReconfigMetrics(),
		tracker: NewDeviceTracker(),
		keys:    NewDeviceKeyAllocator(),
		master:  NewChangeSet(vm, req.AllowPowerCycle),
		byKind:  map[DeviceKind]DeviceLinkedHandler{},
	}

	newCS := func() *ChangeSet {
		return NewChangeSet(vm, req.AllowPowerCycle)
	}

	scsi := newSCSIControllerHandler(&c.req, newCS(), c.tracker, c.keys)
	sata := newSATAControllerHandler(&c.req, newCS(), c.tracker, c.keys)
	nvme := newNVMEControllerHandler(&c.req, newCS(), c.tracker, c.keys)
	ide := newIDEControllerHandler(newCS(), c.tracker, c.keys)
	resolver := controllerResolver{
		handlers: []*diskControllerHandler{scsi, sata, nvme, ide},
	}

	c.handlers = []Handler{
		scsi,
		sata,
		nvme,
		ide,
		newMetadataHandler(&c.req, newCS()),
		newCPUHandler(&c.req, newCS()),
		newMemoryHandler(&c.req, newCS()),
		newVMOptionsHandler(&c.req, newCS()),
		newDiskHandler(&c.req, newCS(), c.tracker, c.keys, resolver),
		newCdromHandler(&c.req, newCS(), c.tracker, c.keys, resolver),
		newNetworkAdapterHandler(&c.req, newCS(), c.tracker, c.keys),
		newNVDIMMHandler(&c.req, newCS(), c.tracker, c.keys),
	}

	for _, h := range c.handlers {
		if dh, ok := h.(DeviceLinkedHandler); ok {
			for _, kind := range dh.Kinds() {
				c.byKind[kind] = dh
			}
		}
	}

	return c
}

// PrepareConfiguration validates every parameter group and links the live
// VM's devices to the desired devices. Live devices whose kind no handler
// owns are left untouched; devices a handler owns but no desired device
// claims are queued for removal.
func (c *Configurator) PrepareConfiguration() error {
	if c.phase != phaseCreated {
		return InternalError{
			Message: fmt.Sprintf("cannot prepare a configuration that is already %s", c.phase),
		}
	}

	for _, h := range c.handlers {
		if err := h.VerifyParameterConstraints(); err != nil {
			c.metrics.RegisterValidationFailure(h.Name(), validationReason(err))
			c.phase = phaseFailed
			return err
		}
	}

	if err := c.linkLiveDevices(); err != nil {
		c.phase = phaseFailed
		return err
	}

	c.phase = phaseValidated
	return nil
}

func (c *Configurator) linkLiveDevices() error {
	if c.vm == nil || c.vm.Config == nil {
		return nil
	}

	// Controllers link first, regardless of their position in the hardware
	// list, so disks, CD-ROMs, and NVDIMMs can match live devices by their
	// controller's resolved key.
	liveDevices := c.vm.Config.Hardware.Device
	controllers := util.SelectDevices[vimtypes.BaseVirtualDevice](
		liveDevices,
		func(dev vimtypes.BaseVirtualDevice) bool {
			return ClassifyDevice(dev).IsController()
		},
	)
	carried := util.SelectDevices[vimtypes.BaseVirtualDevice](
		liveDevices,
		func(dev vimtypes.BaseVirtualDevice) bool {
			return !ClassifyDevice(dev).IsController()
		},
	)

	for _, dev := range append(controllers, carried...) {
		kind := ClassifyDevice(dev)
		handler, ok := c.byKind[kind]
		if !ok {
			continue
		}

		unclaimed, err := handler.LinkVMDevice(dev)
		if err != nil {
			return err
		}
		if unclaimed != nil {
			c.log.V(4).Info("queueing unclaimed device for removal",
				"kind", kind.String(),
				"key", unclaimed.GetVirtualDevice().Key,
				"handler", handler.Name())
			c.toRemove = append(c.toRemove, unclaimed)
		}
	}
	return nil
}

// StageConfigurationChanges compares the desired configuration against the
// live one and accumulates every difference into the master change set.
// A power sensitive change on a powered on VM fails here unless the request
// allows power cycling or the VM supports the change while running.
func (c *Configurator) StageConfigurationChanges() error {
	if c.phase != phaseValidated {
		return InternalError{
			Message: fmt.Sprintf("cannot stage changes for a configuration that is %s", c.phase),
		}
	}

	for _, h := range c.handlers {
		if err := h.CompareLiveConfigWithDesiredConfig(); err != nil {
			if IsPowerCycleRequiredError(err) {
				c.metrics.RegisterPowerCycleRequired()
			}
			c.phase = phaseFailed
			return err
		}
		c.master.Propagate(h.ChangeSet())
	}
	c.master.ToRemove = append(c.master.ToRemove, c.toRemove...)

	if c.master.PowerCycleRequired {
		c.metrics.RegisterPowerCycleRequired()
		c.log.Info("staged changes require a power cycle")
	}

	c.phase = phaseStaged
	return nil
}

// ChangesRequired reports whether the staged changes demand a reconfigure
// call. Creation always does.
func (c *Configurator) ChangesRequired() bool {
	return c.master.Required()
}

// PowerCycleRequired reports whether any staged change needs the VM powered
// off to take effect.
func (c *Configurator) PowerCycleRequired() bool {
	return c.master.PowerCycleRequired
}

// Changes returns the master change set accumulated during staging.
func (c *Configurator) Changes() *ChangeSet {
	return c.master
}

// ApplyStagedChanges renders the staged changes into a config spec ready
// for the platform's reconfigure call. Removal specs lead the device change
// list, then each handler with pending changes appends its add and edit
// specs in handler order, so controllers always precede the devices that
// reference their keys.
func (c *Configurator) ApplyStagedChanges() (*vimtypes.VirtualMachineConfigSpec, error) {
	if c.phase != phaseStaged {
		return nil, InternalError{
			Message: fmt.Sprintf("cannot apply changes for a configuration that is %s", c.phase),
		}
	}

	configSpec := &vimtypes.VirtualMachineConfigSpec{}

	for _, dev := range c.master.ToRemove {
		c.tracker.Track(removedDevice{dev: dev})
		configSpec.DeviceChange = append(configSpec.DeviceChange, removeDeviceSpec(dev))
	}

	for _, h := range c.handlers {
		if h.ChangeSet().Required() {
			h.PopulateConfigSpec(configSpec)
		}
	}

	c.metrics.RegisterReconciliation(c.outcome().String())
	c.log.V(4).Info("rendered config spec",
		"added", len(util.DevicesFromDeviceChange(
			configSpec.DeviceChange, vimtypes.VirtualDeviceConfigSpecOperationAdd)),
		"edited", len(util.DevicesFromDeviceChange(
			configSpec.DeviceChange, vimtypes.VirtualDeviceConfigSpecOperationEdit)),
		"removed", len(util.DevicesFromDeviceChange(
			configSpec.DeviceChange, vimtypes.VirtualDeviceConfigSpecOperationRemove)),
		"changedParameters", len(c.master.Changed))

	c.phase = phaseApplied
	return configSpec, nil
}

func (c *Configurator) outcome() Outcome {
	switch {
	case !c.master.Required():
		return OutcomeInSync
	case c.master.PowerCycleRequired:
		return OutcomeRequiresPowerCycle
	default:
		return OutcomeChanged
	}
}

// TranslateDeviceID maps a 1-based device change position, as reported in
// platform fault messages, back to the device that produced the entry.
func (c *Configurator) TranslateDeviceID(id int) (TrackedDevice, error) {
	return c.tracker.Translate(id)
}

// validationReason buckets a validation error for metrics labels.
func validationReason(err error) string {
	switch {
	case IsResourceConstraintError(err):
		return "resource-constraint"
	case IsDeviceLinkError(err):
		return "device-link"
	case IsParameterError(err):
		return "invalid-parameter"
	default:
		return "internal"
	}
}
