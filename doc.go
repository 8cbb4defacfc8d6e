// Package taxwiz computes the yearly tax report of a brokerage account in the
// home currency (HUF by default).
//
// The workflow is:
//   - Import: a brokerage CSV export is read into Transactions, as described by
//     a Profile (Lightyear, Revolut, RevolutSavings).
//   - Resolve: every foreign amount is converted at the official exchange rate
//     of its own date. The Resolver queries a RateSource (the MNB web service
//     in package mnb, or Frankfurter) over a short window of days, picks the
//     day on or before the requested one, and keeps the answer in a RateCache.
//   - Aggregate: PositionAggregator sums buys and sells per instrument and
//     currency, IncomeAggregator lists dividends and interest or buckets a
//     savings account by month.
//   - Report: BuildReport gathers the results into Tables that the renderer
//     package writes as markdown, html, json or xlsx.
//
// Failures are classified by ErrInputMalformed, ErrRateUnavailable and
// ErrCacheIO. None of them aborts a report: malformed rows are skipped and
// unavailable rates fall back to a fixed value that is logged.
package taxwiz
