package model

import "time"

// CanonicalReport is the stable client-facing shape of one query snapshot.
// It is a pure projection of a RawCompositeReport: same input, same output.
type CanonicalReport struct {
	MainID        string                 `json:"main_id"`
	SubID         string                 `json:"sub_id"`
	PersonalInfo  PersonalInfo           `json:"personal_info"`
	Other         []OtherItem            `json:"other"`
	Registry      CanonicalRegistry      `json:"registry_records"`
	SocialMedia   CanonicalSocial        `json:"social_media"`
	PublicRecords CanonicalPublicRecords `json:"public_records"`
	ImageMetadata *ImageMetadata         `json:"image_metadata"`
	Summary       Summary                `json:"summary"`
	GeneratedAt   time.Time              `json:"generated_at"`
}

// OtherItem is one reduced free-text hit in the canonical report.
type OtherItem struct {
	Source      string `json:"source"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

// LinkDescription is a reduced record: one link and a short description.
type LinkDescription struct {
	Link        string `json:"link"`
	Description string `json:"description"`
}

// CanonicalRegistry holds the filtered registry projections. Each record
// is a field-name-to-value map restricted to the registry's canonical
// field list, with photo/image fields and oversized values stripped.
type CanonicalRegistry struct {
	Voter    []map[string]string `json:"voter"`
	Pan      []map[string]string `json:"pan"`
	Aadhar   []map[string]string `json:"aadhar"`
	Criminal []map[string]string `json:"criminal"`
}

// CanonicalSocial holds at most one resolved profile per platform.
// A nil entry means no profile was found for that platform.
type CanonicalSocial struct {
	Facebook  *LinkDescription `json:"facebook"`
	Instagram *LinkDescription `json:"instagram"`
	LinkedIn  *LinkDescription `json:"linkedin"`
	Twitter   *LinkDescription `json:"twitter"`
}

// CanonicalPublicRecords holds the first business and property record,
// reduced to link and description, or nil when none were found.
type CanonicalPublicRecords struct {
	BusinessRecords *LinkDescription `json:"business_records"`
	PropertyRecords *LinkDescription `json:"property_records"`
}

// ImageLocation is the location portion of projected image metadata.
type ImageLocation struct {
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
	State     string  `json:"state,omitempty"`
	Country   string  `json:"country,omitempty"`
}

// ImageMetadata is the projection of caller-supplied image metadata.
type ImageMetadata struct {
	Camera   string         `json:"camera,omitempty"`
	Location *ImageLocation `json:"location,omitempty"`
}
