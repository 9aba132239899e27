// Package wager tracks a long-running wager between two investments by
// converting heterogeneous market series into the value over time of the
// same initial investment.
//
// The computation flows one way:
//   - Normalization: a raw price or rate series becomes a value series,
//     according to its Kind (price ratio, daily rate, monthly rate plus an
//     annual spread, exchange rate plus a linear annual spread).
//   - Timeline: MergeTimeline aligns all value series on the union of their
//     dates, carrying the last known value forward.
//   - Statistics: ComputeReturns and ComputeConsistency derive calendar
//     relative returns and monthly consistency from one value series.
//   - Aggregation: an Aggregator runs all of the above for every configured
//     Instrument and assembles a Dashboard.
//
// Raw series are retrieved by Fetcher implementations, see FetchAll.
package wager
