// Package imagemeta extracts EXIF metadata from caller-supplied images.
//
// Investigators attach subject photos to a search; camera identification
// and embedded GPS coordinates from those photos become part of the
// query's attached metadata and surface in the canonical report.
package imagemeta
