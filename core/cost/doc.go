// Package cost turns per-million token prices into the monetary cost of a
// request.
//
// [ModelCost] holds the three rates a catalog entry publishes. Arithmetic is
// done in [decimal.Decimal] so that sub-cent amounts add up exactly;
// [Breakdown] reports each component and the total.
package cost
