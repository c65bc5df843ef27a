package imagemeta

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

// ErrNoMetadata is returned when the image carries no EXIF segment.
var ErrNoMetadata = errors.New("no EXIF metadata found in image")

// MaxImageSize limits the size of images accepted for extraction.
const MaxImageSize = 5 * 1024 * 1024

// ErrImageTooLarge is returned when the image exceeds MaxImageSize.
var ErrImageTooLarge = errors.New("image exceeds maximum size")

// Extract parses EXIF metadata from raw image bytes into a flat map
// suitable for attaching to a query. Recognized keys:
//
//	camera_make, camera_model, software, datetime, latitude, longitude
//
// GPS coordinates are decimal degrees. Only JPEG and TIFF style EXIF
// segments are supported; images without EXIF return ErrNoMetadata.
func Extract(data []byte) (map[string]any, error) {
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil, ErrNoMetadata
		}
		return nil, fmt.Errorf("failed to locate EXIF segment: %w", err)
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EXIF data: %w", err)
	}

	meta := make(map[string]any)
	for _, entry := range entries {
		switch entry.TagName {
		case "Make":
			meta["camera_make"] = entry.Formatted
		case "Model":
			meta["camera_model"] = entry.Formatted
		case "Software":
			meta["software"] = entry.Formatted
		case "DateTimeOriginal":
			meta["datetime"] = entry.Formatted
		case "DateTime":
			// DateTimeOriginal is more precise; keep it if already set.
			if _, ok := meta["datetime"]; !ok {
				meta["datetime"] = entry.Formatted
			}
		}
	}

	if lat, lon, ok := gpsCoordinates(rawExif); ok {
		meta["latitude"] = lat
		meta["longitude"] = lon
	}

	if len(meta) == 0 {
		return nil, ErrNoMetadata
	}
	return meta, nil
}

// ExtractBase64 decodes a base64-encoded image (with or without a
// data: URL prefix) and extracts its metadata.
func ExtractBase64(encoded string) (map[string]any, error) {
	if idx := strings.Index(encoded, ","); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 image: %w", err)
		}
	}

	return Extract(data)
}

// gpsCoordinates resolves the GPS IFD to decimal degrees. Flat tag
// entries only carry formatted rationals, so the IFD walk is needed
// for usable coordinates.
func gpsCoordinates(rawExif []byte) (lat, lon float64, ok bool) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return 0, 0, false
	}

	ti := exif.NewTagIndex()
	_, index, err := exif.Collect(im, ti, rawExif)
	if err != nil {
		return 0, 0, false
	}

	ifd, err := index.RootIfd.ChildWithIfdPath(exifcommon.IfdGpsInfoStandardIfdIdentity)
	if err != nil {
		return 0, 0, false
	}

	gi, err := ifd.GpsInfo()
	if err != nil {
		return 0, 0, false
	}

	return gi.Latitude.Decimal(), gi.Longitude.Decimal(), true
}
