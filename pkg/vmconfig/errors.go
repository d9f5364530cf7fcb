// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package vmconfig

import (
	"errors"
	"fmt"
	"strings"
)

// ParameterError is returned when a desired value is structurally or
// semantically invalid. It is always fatal to the current reconciliation.
type ParameterError struct {
	// Parameter is the name of the offending parameter, e.g. "cpu.cores".
	Parameter string
	Message   string
}

func (e ParameterError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Parameter, e.Message)
}

// IsParameterError returns true if the error or a nested error is a
// ParameterError.
func IsParameterError(err error) bool {
	var pe ParameterError
	return errors.As(err, &pe)
}

// ResourceConstraintError is returned when a count or identity limit is
// exceeded, such as too many controllers of one category or a device
// referencing a controller that was never configured.
type ResourceConstraintError struct {
	Parameter string
	Message   string
	Category  string
	Limit     int
	Attempted int
	// Available lists known alternatives, such as the configured
	// controllers a device node could have referenced.
	Available []string
}

func (e ResourceConstraintError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Parameter, e.Message)
	if e.Available != nil {
		msg += fmt.Sprintf(" (available: [%s])", strings.Join(e.Available, ", "))
	}
	return msg
}

// IsResourceConstraintError returns true if the error or a nested error is a
// ResourceConstraintError.
func IsResourceConstraintError(err error) bool {
	var rce ResourceConstraintError
	return errors.As(err, &rce)
}

// PowerCycleRequiredError is returned when a desired change is legal but
// requires the VM to be powered off, or hot add/remove to have been enabled
// beforehand. The caller may retry with power cycling permitted.
type PowerCycleRequiredError struct {
	Parameter string
	Message   string
}

func (e PowerCycleRequiredError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("configuring %s is not supported while the VM is powered on", e.Parameter)
}

// IsPowerCycleRequiredError returns true if the error or a nested error is a
// PowerCycleRequiredError.
func IsPowerCycleRequiredError(err error) bool {
	var pcr PowerCycleRequiredError
	return errors.As(err, &pcr)
}

// DeviceLinkError is returned when an existing live device could not be
// matched to any declared device and the category disallows silent adoption.
type DeviceLinkError struct {
	// Device is a descriptive label for the live device, derived from its
	// controller and unit position.
	Device  string
	Message string
}

func (e DeviceLinkError) Error() string {
	return fmt.Sprintf("%s: %s", e.Device, e.Message)
}

// IsDeviceLinkError returns true if the error or a nested error is a
// DeviceLinkError.
func IsDeviceLinkError(err error) bool {
	var dle DeviceLinkError
	return errors.As(err, &dle)
}

// InternalError indicates a programming defect, such as a device tracker
// index that was never tracked or a phase invoked out of order. It never
// reflects bad user input.
type InternalError struct {
	Message string
}

func (e InternalError) Error() string {
	return "internal error: " + e.Message
}

// IsInternalError returns true if the error or a nested error is an
// InternalError.
func IsInternalError(err error) bool {
	var ie InternalError
	return errors.As(err, &ie)
}
