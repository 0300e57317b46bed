// Package portfoy values a personal investment portfolio recorded as rows of
// holdings (code, market, quantity, unit cost) across several profiles.
//
// The core functionalities include:
//   - Classification: a single rule deriving an asset class and a native
//     currency from free-text market labels such as "BIST (Tümü)" or
//     "ABD (S&P + NASDAQ)".
//   - Price Resolution: dispatching each holding to the right external price
//     source (market data, fund pricing, commodity quotes) and degrading to the
//     recorded unit cost when no quote is available.
//   - Valuation: a stateless engine computing cost, value, profit and daily
//     change in a display currency (TRY or USD) from a single FX snapshot.
//   - Aggregation: totals, groupings and the read-only TOTAL profile that
//     unions all other profiles.
//
// This package serves as the foundational logic for the `pfy` command-line
// tool. Storage and price providers live in sibling packages and are consumed
// through the small interfaces declared here.
package portfoy
