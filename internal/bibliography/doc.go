// Package bibliography loads reference databases (BibTeX, CSL-YAML and
// CSL-JSON) into a Registry of entries keyed by citation id.
//
// Files are loaded independently and merged in the order given; when two
// files define the same id the first one wins. Unreadable, oversized or
// unrecognized files are skipped and reported through a joined error that
// accompanies a usable (possibly empty) registry.
package bibliography
