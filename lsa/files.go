// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package lsa

import "fmt"

// SuitabilityFile returns the name of the output file
// of a run for a scenario.
// If model is not empty,
// the name includes the climate model.
func SuitabilityFile(landUse, scenario, model string, res Resolution, version string) string {
	if model != "" {
		return fmt.Sprintf("%s_suitability_%s_%s_%s_v%s.nc", landUse, scenario, model, res, version)
	}
	return fmt.Sprintf("%s_suitability_%s_%s_v%s.nc", landUse, scenario, res, version)
}

// SoilTerrainFile returns the name of the output file
// with the soil and terrain scores
// of a run by climate model.
func SoilTerrainFile(landUse string, res Resolution, version string) string {
	return fmt.Sprintf("%s_soilTerrain-suitability_%s_v%s.nc", landUse, res, version)
}

// ChangeFile returns the name of the output file
// with the multi-model mean,
// change,
// and robustness,
// of a variable.
func ChangeFile(landUse, variable string, res Resolution, version string) string {
	return fmt.Sprintf("%s_%s-MMM-change-robustness_%s_v%s.nc", landUse, variable, res, version)
}

// StatsFile returns the name of the output file
// with the area statistics of the suitability.
func StatsFile(landUse string, res Resolution, version string) string {
	return fmt.Sprintf("%s_suitability_stats_summary_%s_v%s.tab", landUse, res, version)
}
