// Package holdings defines the canonical representation of investment holdings
// gathered from several data providers, and the consolidated table they are merged
// into.
//
// The core types are:
//   - Holding: the canonical record every provider spreadsheet is mapped into. It
//     carries six core fields (ticker, quantity, average price, current price,
//     total value and source) and an allow-listed set of optional metadata fields.
//   - Position: a holding of the consolidated table, extended with its profit and
//     loss.
//   - Summary: the at-a-glance figures of a consolidated table.
//
// Amounts are exact decimals. Tables are exchanged as delimited text (see
// EncodePositions and DecodePositions) so that they remain readable by spreadsheets
// and easy to diff between two dated snapshots.
//
// Provider readers live in package source, the cross-source merge in package dedup
// and the dated snapshots in package version. Package consolidate wires them together.
package holdings
