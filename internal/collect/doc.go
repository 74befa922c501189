// Package collect finds Solidity sources and reads them into artifacts.
//
// A target may be a single file, a directory (walked recursively) or a
// doublestar glob such as "contracts/**/*.sol". Files are filtered by
// extension and exclude patterns, then read with a size limit and a UTF-8
// check. Read failures are carried on the artifact rather than returned.
package collect
