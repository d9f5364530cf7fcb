// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedDeviceNode is returned when a device node string does not
// match the TYPE(bus:unit) grammar.
var ErrMalformedDeviceNode = errors.New("malformed device node")

// DeviceNode identifies the position of a device on a controller, e.g.
// "SCSI(0:0)" is bus 0, unit 0 on the SCSI controller family.
type DeviceNode struct {
	Category string
	Bus      int32
	Unit     int32
}

func (n DeviceNode) String() string {
	return fmt.Sprintf("%s(%d:%d)", n.Category, n.Bus, n.Unit)
}

var deviceNodeRx = regexp.MustCompile(`^\s*([A-Za-z]+)\s*\(\s*(\d+)\s*:\s*(\d+)\s*\)\s*$`)

// ParseDeviceNode parses a device node string of the form TYPE(bus:unit),
// e.g. "SCSI(0:0)" or "sata(1:2)". The category is lowercased. Internal
// whitespace is tolerated.
func ParseDeviceNode(node string) (DeviceNode, error) {
	m := deviceNodeRx.FindStringSubmatch(node)
	if m == nil {
		return DeviceNode{}, fmt.Errorf(
			"%w: %q: expected format <controller_type>(<bus_number>:<unit_number>), like \"SCSI(0:0)\"",
			ErrMalformedDeviceNode, node)
	}

	bus, err := strconv.ParseInt(m[2], 10, 32)
	if err != nil {
		return DeviceNode{}, fmt.Errorf("%w: %q: bus number %q is out of range", ErrMalformedDeviceNode, node, m[2])
	}
	unit, err := strconv.ParseInt(m[3], 10, 32)
	if err != nil {
		return DeviceNode{}, fmt.Errorf("%w: %q: unit number %q is out of range", ErrMalformedDeviceNode, node, m[3])
	}

	return DeviceNode{
		Category: strings.ToLower(m[1]),
		Bus:      int32(bus),
		Unit:     int32(unit),
	}, nil
}
