// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"fmt"

	vimtypes "github.com/vmware/govmomi/vim25/types"
)

// Network adapter models. The empty string means any existing model is
// acceptable; new adapters default to vmxnet3.
const (
	AdapterTypeVmxnet3 = "vmxnet3"
	AdapterTypeVmxnet2 = "vmxnet2"
	AdapterTypeE1000   = "e1000"
	AdapterTypeE1000e  = "e1000e"
	AdapterTypePCNet32 = "pcnet32"
	AdapterTypeSriov   = "sriov"
)

// MACAddressAutomatic requests a platform generated MAC address.
const MACAddressAutomatic = "automatic"

// Address types on the wire.
const (
	addressTypeGenerated = "generated"
	addressTypeManual    = "manual"
)

// liveNIC is a snapshot of an existing network adapter.
type liveNIC struct {
	key            int32
	adapterType    string
	deviceName     string
	macAddress     string
	startConnected bool
	connected      bool
	device         vimtypes.BaseVirtualEthernetCard
}

// NetworkAdapter is one desired network adapter backed by a standard vSwitch
// portgroup. Live adapters carry no stable identity, so adapters link to
// live devices strictly in declaration order.
type NetworkAdapter struct {
	ordinal          int
	adapterType      string
	portgroupName    string
	macAddress       string
	connectAtPowerOn *bool
	connected        *bool

	key  int32
	live *liveNIC
}

// NewNetworkAdapter builds the desired adapter at the given ordinal
// position.
func NewNetworkAdapter(ordinal int, params NetworkAdapterParams) *NetworkAdapter {
	return &NetworkAdapter{
		ordinal:          ordinal,
		adapterType:      params.AdapterType,
		portgroupName:    params.PortgroupName,
		macAddress:       params.MACAddress,
		connectAtPowerOn: params.ConnectAtPowerOn,
		connected:        params.Connected,
	}
}

func (n *NetworkAdapter) Name() string {
	return fmt.Sprintf("Network Adapter %d", n.ordinal+1)
}

func (n *NetworkAdapter) Kind() DeviceKind {
	return DeviceKindNetworkAdapter
}

func (n *NetworkAdapter) Linked() bool {
	return n.live != nil
}

func (n *NetworkAdapter) Key() int32 {
	if n.live != nil {
		return n.live.key
	}
	return n.key
}

// linkLive binds a live adapter to this desired one. The live adapter's
// model must be compatible with the declared type; in place model changes
// are unsupported.
func (n *NetworkAdapter) linkLive(dev vimtypes.BaseVirtualEthernetCard) error {
	liveType := ethernetCardModel(dev)
	if n.adapterType != "" && n.adapterType != liveType {
		return DeviceLinkError{
			Device: n.Name(),
			Message: fmt.Sprintf(
				"existing adapter is a %s device but %s was requested; "+
					"changing the adapter type in place is not supported",
				liveType, n.adapterType),
		}
	}

	card := dev.GetVirtualEthernetCard()
	live := &liveNIC{
		key:         card.Key,
		adapterType: liveType,
		macAddress:  card.MacAddress,
		device:      dev,
	}
	if card.AddressType == addressTypeGenerated {
		live.macAddress = MACAddressAutomatic
	}
	if backing, ok := card.Backing.(*vimtypes.VirtualEthernetCardNetworkBackingInfo); ok {
		live.deviceName = backing.DeviceName
	}
	if card.Connectable != nil {
		live.startConnected = card.Connectable.StartConnected
		live.connected = card.Connectable.Connected
	}
	n.live = live
	return nil
}

func (n *NetworkAdapter) DiffersFromLive() bool {
	if n.live == nil {
		return true
	}
	if n.portgroupName != "" && n.portgroupName != n.live.deviceName {
		return true
	}
	if n.macAddress != "" && n.macAddress != n.live.macAddress {
		return true
	}
	if n.connectAtPowerOn != nil && *n.connectAtPowerOn != n.live.startConnected {
		return true
	}
	if n.connected != nil && *n.connected != n.live.connected {
		return true
	}
	return false
}

func (n *NetworkAdapter) NewSpec(keys *DeviceKeyAllocator) vimtypes.BaseVirtualDeviceConfigSpec {
	n.key = keys.Next()
	dev := newEthernetCard(n.adapterType)
	card := dev.GetVirtualEthernetCard()
	card.Key = n.key
	card.DeviceInfo = &vimtypes.Description{}
	card.Connectable = &vimtypes.VirtualDeviceConnectInfo{}
	if n.macAddress == "" || n.macAddress == MACAddressAutomatic {
		card.AddressType = addressTypeGenerated
	} else {
		card.AddressType = addressTypeManual
		card.MacAddress = n.macAddress
	}
	n.applyOptions(card)

	return &vimtypes.VirtualDeviceConfigSpec{
		Operation: vimtypes.VirtualDeviceConfigSpecOperationAdd,
		Device:    dev.(vimtypes.BaseVirtualDevice),
	}
}

func (n *NetworkAdapter) UpdateSpec() vimtypes.BaseVirtualDeviceConfigSpec {
	card := *n.live.device.GetVirtualEthernetCard()
	if card.Connectable != nil {
		connectable := *card.Connectable
		card.Connectable = &connectable
	} else {
		card.Connectable = &vimtypes.VirtualDeviceConnectInfo{}
	}
	switch {
	case n.macAddress == MACAddressAutomatic:
		card.AddressType = addressTypeGenerated
		card.MacAddress = ""
	case n.macAddress != "":
		card.AddressType = addressTypeManual
		card.MacAddress = n.macAddress
	}
	n.applyOptions(&card)

	dev := newEthernetCard(n.live.adapterType)
	*dev.GetVirtualEthernetCard() = card

	return &vimtypes.VirtualDeviceConfigSpec{
		Operation: vimtypes.VirtualDeviceConfigSpecOperationEdit,
		Device:    dev.(vimtypes.BaseVirtualDevice),
	}
}

func (n *NetworkAdapter) applyOptions(card *vimtypes.VirtualEthernetCard) {
	if n.connectAtPowerOn != nil {
		card.Connectable.StartConnected = *n.connectAtPowerOn
	}
	if n.connected != nil {
		card.Connectable.Connected = *n.connected
	}
	if n.portgroupName != "" {
		card.Backing = &vimtypes.VirtualEthernetCardNetworkBackingInfo{
			VirtualDeviceDeviceBackingInfo: vimtypes.VirtualDeviceDeviceBackingInfo{
				DeviceName: n.portgroupName,
			},
		}
	}
}

// ethernetCardModel maps a live card's concrete type to its model name.
func ethernetCardModel(dev vimtypes.BaseVirtualEthernetCard) string {
	switch dev.(type) {
	case *vimtypes.VirtualVmxnet3:
		return AdapterTypeVmxnet3
	case *vimtypes.VirtualVmxnet2:
		return AdapterTypeVmxnet2
	case *vimtypes.VirtualE1000:
		return AdapterTypeE1000
	case *vimtypes.VirtualE1000e:
		return AdapterTypeE1000e
	case *vimtypes.VirtualPCNet32:
		return AdapterTypePCNet32
	case *vimtypes.VirtualSriovEthernetCard:
		return AdapterTypeSriov
	default:
		return ""
	}
}

// newEthernetCard builds the concrete card device for the given model,
// defaulting to vmxnet3.
func newEthernetCard(adapterType string) vimtypes.BaseVirtualEthernetCard {
	switch adapterType {
	case AdapterTypeVmxnet2:
		return &vimtypes.VirtualVmxnet2{}
	case AdapterTypeE1000:
		return &vimtypes.VirtualE1000{}
	case AdapterTypeE1000e:
		return &vimtypes.VirtualE1000e{}
	case AdapterTypePCNet32:
		return &vimtypes.VirtualPCNet32{}
	case AdapterTypeSriov:
		return &vimtypes.VirtualSriovEthernetCard{}
	default:
		return &vimtypes.VirtualVmxnet3{}
	}
}
