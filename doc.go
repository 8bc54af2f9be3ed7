// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package nzlusdb holds the definitions shared
// by the packages of the New Zealand
// land use suitability database.
//
// A land suitability analysis
// standardises a set of indicators
// (climate, soil and terrain)
// into scores between 0 and 1,
// aggregates them into category scores
// and a final suitability score,
// and finally summarises an ensemble of climate models
// into a multi-model mean with its change
// and robustness.
package nzlusdb

// Version is the version of the database
// stored in the output attributes.
const Version = "1.0.0"
