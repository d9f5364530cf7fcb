// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

// Package vmconfig reconciles a declared virtual machine hardware
// configuration against the live state of an existing, or not yet created,
// vSphere virtual machine. The Configurator validates the request, detects
// exactly what must change, enforces the platform's hardware and power-state
// constraints, and emits a single VirtualMachineConfigSpec ready to be
// submitted to the Reconfigure task API by the caller. The package never
// talks to vSphere itself.
package vmconfig
