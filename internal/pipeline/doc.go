// Package pipeline implements the Markdown-to-HTML stage that sits between
// citation parsing and citation rendering.
//
//   - Markdown preprocessing (line normalization, highlight syntax)
//   - Placeholder protection so citation markers survive Goldmark
//   - Markdown to HTML conversion via Goldmark, per processing mode
//   - Relative link and image rebasing for a different output directory
//   - Standalone document wrapping
package pipeline
