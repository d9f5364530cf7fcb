// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package metrics

const (
	// If this changes, the metrics collection configs (e.g. telegraf) will need to be updated as well.
	metricsNamespace = "vmreconfig"

	// Reconfigure related metrics labels.
	outcomeLabel   = "outcome"
	parameterLabel = "parameter"
	reasonLabel    = "reason"
)
