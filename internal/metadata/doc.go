// Package metadata extracts, merges and serializes document metadata.
//
// A document may open with one of three metadata blocks:
//   - YAML front matter between "---" and "---" (or "...")
//   - a Pandoc title block of up to three "%" lines (title, author, date)
//   - MultiMarkdown "Key: value" lines ended by a blank line
//
// Extraction never fails: text without a recognizable block is returned
// unchanged with an empty List. Keys are matched case-insensitively and
// ignoring whitespace, so "HTML Header Level" and "htmlheaderlevel" name
// the same item.
package metadata
