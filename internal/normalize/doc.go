// Package normalize provides pure text transforms applied to subject
// names before querying structured identity registries.
//
// Free-text providers receive the original query string; only registry
// lookups go through Name, because registry databases index clean names
// while social platforms append opaque profile-ID suffixes.
package normalize
