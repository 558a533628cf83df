// Package tinvest reconstructs a personal investment portfolio from a broker
// operation history and computes its daily profitability.
//
// The core is a one-way pipeline over immutable value records:
//
//   - Normalization: raw broker operations are filtered down to trades,
//     converted to the reporting currency and adjusted for stock splits.
//   - Reconstruction: the trade stream becomes a dense daily series of held
//     quantity and cost basis per security, forward-filled across days
//     without trading activity.
//   - Valuation: positions are joined with historical closing prices to
//     produce per-day mark-to-market profit, absolute and relative.
//   - Reporting: valuation series are rolled up by asset type and ticker
//     into allocation, profitability and correlation summaries.
//
// External data (broker operations, scraped quotes, currency rates) is
// fetched by the clients in the tinkoff, investfunds and cbrf subpackages and
// cached as flat files by the store subpackage. The `tia` command line tool
// ties the pieces together.
package tinvest
