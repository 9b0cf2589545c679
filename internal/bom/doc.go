// Package bom contains the bill-of-materials normalization pipeline.
//
// The pipeline has four stages, each a pure function over its inputs:
//
//  1. [Parse] turns raw delimited text into an ordered header list plus
//     one string map per data line, tolerating ragged rows and quoted cells.
//  2. [FindDesignatorColumn] and [NormalizeRow] rewrite source headers to
//     canonical field names using the alias table in an [ImportProfile].
//  3. [Flatten] expands a row listing several designators ("R1, R2 R3")
//     into one component per designator, or parks the row as ambiguous
//     when a quantity column disagrees with a simple expansion.
//  4. [ResolveAmbiguous] applies a per-row policy (flatten, keep, skip)
//     chosen by the user to the parked rows.
//
// Nothing in this package touches storage. Persistence of components and
// pending ambiguous rows lives in internal/parts.
package bom
