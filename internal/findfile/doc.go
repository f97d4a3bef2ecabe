// Package findfile resolves a path/filename specification and a traversal
// policy (depth, direction, symlink following, filesystem scope) into the
// concrete files it names. Path patterns are expanded by MatchPaths; each
// resulting root is walked depth-first and matches stream out of
// Discovery.Units as a lazy sequence. Roots without matches surface as
// path-only units so callers can report "path exists, file does not".
package findfile
