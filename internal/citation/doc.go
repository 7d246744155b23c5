// Package citation finds citations in Markdown source, replaces them with
// <!--CITE:KEY--> placeholders, and later resolves those placeholders in
// the rendered HTML against a bibliography.
//
// Three syntaxes are recognized, tried in this order at each position:
//
//	[@RFC2119] [@!RFC8174] [@?BCP14]   mmark standards references
//	[#key] [p. 23][#key]               MultiMarkdown
//	@key  @key [p. 4]  [see @key, p. 4]  [-@key]   Pandoc
//	[see @a, p. 4; -@b; @c]                        Pandoc group
//
// A group renders as one parenthetical with its members separated by "; ".
// Text inside code spans, fenced blocks and indented blocks is never
// scanned.
package citation
