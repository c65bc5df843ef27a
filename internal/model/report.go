package model

import "time"

// RawCompositeReport aggregates every provider's payload for one query
// snapshot, together with the derived summary.
//
// The report is created once by the orchestrator and never mutated
// afterwards; the formatter only reads it. Providers that failed are
// recorded in Failures with their reason, and their payload section is
// left empty.
type RawCompositeReport struct {
	// PersonalInfo echoes the queried subject identity.
	PersonalInfo PersonalInfo `json:"personal_info"`

	// WebSearch holds free-text search engine hits grouped by kind.
	WebSearch WebSearchData `json:"web_search"`

	// SocialMedia holds per-platform social profile hits.
	SocialMedia SocialMediaData `json:"social_media"`

	// EmailPhone holds discovered email addresses and phone numbers.
	EmailPhone EmailPhoneData `json:"email_phone"`

	// Domains holds domain registration and DNS data.
	Domains DomainData `json:"domains"`

	// Geolocation holds geocoded location data for the query's location hint.
	Geolocation GeolocationData `json:"geolocation"`

	// PublicRecords holds court, property, business, and license records.
	PublicRecords PublicRecordsData `json:"public_records"`

	// BreachData holds breach and leak lookup results.
	BreachData BreachData `json:"breach_data"`

	// RegistryRecords holds matches from the structured identity registries.
	RegistryRecords RegistryRecords `json:"registry_records"`

	// AttachedMetadata is the caller-supplied metadata from the query,
	// carried through unchanged for the formatter.
	AttachedMetadata map[string]any `json:"attached_metadata,omitempty"`

	// Failures maps provider names to failure reasons for providers that
	// did not complete. An entry here never fails the report as a whole.
	Failures map[string]string `json:"failures,omitempty"`

	// Summary is derived by the orchestrator from the payloads above.
	Summary Summary `json:"summary"`

	// GeneratedAt is the time the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`
}

// PersonalInfo identifies the queried subject.
type PersonalInfo struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// SearchHit is one free-text search engine result.
type SearchHit struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}

// WebSearchData groups search engine hits by what they appear to be.
type WebSearchData struct {
	// SocialMedia holds hits pointing at social media platforms.
	SocialMedia []SearchHit `json:"social_media,omitempty"`

	// WorkProfiles holds hits pointing at professional profiles.
	WorkProfiles []SearchHit `json:"work_profiles,omitempty"`

	// OtherInfo holds everything else.
	OtherInfo []SearchHit `json:"other_info,omitempty"`
}

// SocialProfile is one profile discovered on a social media platform.
type SocialProfile struct {
	Platform string `json:"platform"`
	Name     string `json:"name,omitempty"`
	Handle   string `json:"handle,omitempty"`
	Link     string `json:"link"`
	Bio      string `json:"bio,omitempty"`
}

// SocialMediaData holds per-platform profile hits from the social
// media provider.
type SocialMediaData struct {
	Facebook  []SocialProfile `json:"facebook,omitempty"`
	Instagram []SocialProfile `json:"instagram,omitempty"`
	LinkedIn  []SocialProfile `json:"linkedin,omitempty"`
	Twitter   []SocialProfile `json:"twitter,omitempty"`
}

// HasProfiles reports whether any platform returned at least one profile.
func (d SocialMediaData) HasProfiles() bool {
	return len(d.Facebook)+len(d.Instagram)+len(d.LinkedIn)+len(d.Twitter) > 0
}

// EmailHit is one discovered email address.
type EmailHit struct {
	Address     string `json:"address"`
	Type        string `json:"type,omitempty"`
	Confidence  int    `json:"confidence,omitempty"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description,omitempty"`
}

// PhoneHit is one discovered phone number.
type PhoneHit struct {
	Number      string `json:"number"`
	CountryCode string `json:"country_code,omitempty"`
	Carrier     string `json:"carrier,omitempty"`
	LineType    string `json:"line_type,omitempty"`
	Valid       bool   `json:"valid"`
}

// EmailPhoneData holds discovered contact points.
type EmailPhoneData struct {
	Emails []EmailHit `json:"emails,omitempty"`
	Phones []PhoneHit `json:"phones,omitempty"`
}

// WhoisInfo is a reduced WHOIS record for one domain.
type WhoisInfo struct {
	Registrar   string   `json:"registrar,omitempty"`
	Created     string   `json:"created,omitempty"`
	Expires     string   `json:"expires,omitempty"`
	Nameservers []string `json:"nameservers,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// DNSInfo holds common DNS record sets for one domain.
type DNSInfo struct {
	A   []string `json:"a,omitempty"`
	MX  []string `json:"mx,omitempty"`
	NS  []string `json:"ns,omitempty"`
	TXT []string `json:"txt,omitempty"`
}

// DomainData holds domain registration data tied to the subject.
type DomainData struct {
	Domains []string  `json:"domains,omitempty"`
	Whois   WhoisInfo `json:"whois"`
	DNS     DNSInfo   `json:"dns"`
}

// AddressInfo is a structured postal address.
type AddressInfo struct {
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// GeolocationData holds geocoded data for the query's location hint.
type GeolocationData struct {
	Latitude    float64     `json:"latitude,omitempty"`
	Longitude   float64     `json:"longitude,omitempty"`
	DisplayName string      `json:"display_name,omitempty"`
	Address     AddressInfo `json:"address"`
}

// CourtRecord is one court case record.
type CourtRecord struct {
	CaseNumber string `json:"case_number"`
	Court      string `json:"court,omitempty"`
	Type       string `json:"type,omitempty"`
	Status     string `json:"status,omitempty"`
	FilingDate string `json:"filing_date,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
}

// PropertyRecord is one property ownership record.
type PropertyRecord struct {
	PropertyID   string `json:"property_id"`
	Address      string `json:"address,omitempty"`
	Type         string `json:"type,omitempty"`
	Owner        string `json:"owner,omitempty"`
	PurchaseDate string `json:"purchase_date,omitempty"`
	MarketValue  string `json:"market_value,omitempty"`
	Link         string `json:"link,omitempty"`
	Description  string `json:"description,omitempty"`
}

// BusinessRecord is one business registration record.
type BusinessRecord struct {
	CompanyName        string `json:"company_name"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Type               string `json:"type,omitempty"`
	Status             string `json:"status,omitempty"`
	IncorporationDate  string `json:"incorporation_date,omitempty"`
	Link               string `json:"link,omitempty"`
	Description        string `json:"description,omitempty"`
}

// ProfessionalLicense is one professional license record.
type ProfessionalLicense struct {
	LicenseType      string `json:"license_type"`
	LicenseNumber    string `json:"license_number,omitempty"`
	IssuingAuthority string `json:"issuing_authority,omitempty"`
	IssueDate        string `json:"issue_date,omitempty"`
	ExpiryDate       string `json:"expiry_date,omitempty"`
	Status           string `json:"status,omitempty"`
}

// PublicRecordsData holds public record lookups.
type PublicRecordsData struct {
	CourtRecords         []CourtRecord         `json:"court_records,omitempty"`
	PropertyRecords      []PropertyRecord      `json:"property_records,omitempty"`
	BusinessRecords      []BusinessRecord      `json:"business_records,omitempty"`
	ProfessionalLicenses []ProfessionalLicense `json:"professional_licenses,omitempty"`
}

// Breach is one data breach the subject appears in.
type Breach struct {
	Name            string   `json:"name"`
	Domain          string   `json:"domain,omitempty"`
	BreachDate      string   `json:"breach_date,omitempty"`
	AddedDate       string   `json:"added_date,omitempty"`
	CompromisedData []string `json:"compromised_data,omitempty"`
	Description     string   `json:"description,omitempty"`
	Link            string   `json:"link,omitempty"`
}

// BreachData holds breach lookup results and remediation advice.
type BreachData struct {
	Breaches        []Breach `json:"breaches,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// VoterRecord is one voter roll entry. Field set follows the upstream
// electoral roll schema, including the photo reference the formatter
// is required to strip.
type VoterRecord struct {
	EpicNumber                string `json:"epic_number"`
	Name                      string `json:"name"`
	Age                       string `json:"age,omitempty"`
	DOB                       string `json:"dob,omitempty"`
	Gender                    string `json:"gender,omitempty"`
	Address                   string `json:"address,omitempty"`
	FatherName                string `json:"father_name,omitempty"`
	RelationName              string `json:"relation_name,omitempty"`
	State                     string `json:"state,omitempty"`
	AssemblyConstituency      string `json:"assembly_constituency,omitempty"`
	ParliamentaryConstituency string `json:"parliamentary_constituency,omitempty"`
	PartNumber                string `json:"part_number,omitempty"`
	SerialNumber              string `json:"serial_number,omitempty"`
	PollingStation            string `json:"polling_station,omitempty"`
	Photo                     string `json:"photo,omitempty"`
}

// PanRecord is one tax-ID (PAN) registry entry.
type PanRecord struct {
	PanNumber   string `json:"pan_number"`
	Name        string `json:"name"`
	DOB         string `json:"dob,omitempty"`
	FatherName  string `json:"father_name,omitempty"`
	DateOfIssue string `json:"date_of_issue,omitempty"`
	PhotoLink   string `json:"photo_link,omitempty"`
}

// AadharRecord is one national-ID (Aadhaar) registry entry.
type AadharRecord struct {
	RefID       string `json:"ref_id"`
	Status      string `json:"status,omitempty"`
	Name        string `json:"name"`
	DOB         string `json:"dob,omitempty"`
	Address     string `json:"address,omitempty"`
	Email       string `json:"email,omitempty"`
	Gender      string `json:"gender,omitempty"`
	YearOfBirth string `json:"year_of_birth,omitempty"`
	Photo       string `json:"photo,omitempty"`
}

// CriminalRecord is one criminal case index entry.
type CriminalRecord struct {
	Name       string   `json:"name"`
	CaseNumber string   `json:"case_number,omitempty"`
	Status     string   `json:"status,omitempty"`
	Charges    []string `json:"charges,omitempty"`
	FilingDate string   `json:"filing_date,omitempty"`
	Court      string   `json:"court,omitempty"`
	Address    string   `json:"address,omitempty"`
}

// RegistryRecords holds matches from the four structured registries.
type RegistryRecords struct {
	Voter    []VoterRecord    `json:"voter,omitempty"`
	Pan      []PanRecord      `json:"pan,omitempty"`
	Aadhar   []AadharRecord   `json:"aadhar,omitempty"`
	Criminal []CriminalRecord `json:"criminal,omitempty"`
}

// Summary is the orchestrator-derived assessment of one query snapshot.
type Summary struct {
	// IdentityVerified is true when at least two of the voter, pan, and
	// aadhar registries matched the subject.
	IdentityVerified bool `json:"identity_verified"`

	// DigitalPresence is true when any social or work profile surfaced
	// from either the social media provider or the web search provider.
	DigitalPresence bool `json:"digital_presence"`

	// CriminalRecordCount is the number of criminal registry matches.
	CriminalRecordCount int `json:"criminal_record_count"`

	// MatchedSources lists the registries that contributed at least one
	// record, in the fixed order voter, pan, aadhar, criminal.
	MatchedSources []string `json:"matched_sources"`
}

// MainRecord is the persisted per-subject document. The Reports map is
// append-only: snapshots are added, never overwritten or removed, except
// by deleting the whole record.
type MainRecord struct {
	MainID      string                         `json:"main_id"`
	CreatedAt   time.Time                      `json:"created_at"`
	LastUpdated time.Time                      `json:"last_updated"`
	Reports     map[string]*RawCompositeReport `json:"reports"`
}

// ReportCount returns the number of query snapshots stored for the subject.
func (r *MainRecord) ReportCount() int {
	return len(r.Reports)
}
