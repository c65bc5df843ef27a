package format

import (
	"strings"

	"github.com/osintlab/personscan/internal/model"
)

const (
	// maxDescriptionWords bounds every description in the canonical report.
	maxDescriptionWords = 10

	// maxRegistryValueLength drops registry values that are clearly blobs
	// (base64 photos, embedded documents) rather than readable fields.
	maxRegistryValueLength = 200

	// noDescription is the placeholder for hits without a usable snippet.
	noDescription = "No description available"
)

// Bounds for the mixed "other" section of the canonical report.
const (
	maxWorkProfileItems = 3
	maxOtherInfoItems   = 3
	maxEmailItems       = 2
	maxBreachItems      = 2
)

// Format projects a raw composite report into its canonical shape.
// It never modifies the raw report and has no side effects.
func Format(mainID, subID string, raw *model.RawCompositeReport) model.CanonicalReport {
	return model.CanonicalReport{
		MainID:        mainID,
		SubID:         subID,
		PersonalInfo:  raw.PersonalInfo,
		Other:         formatOther(raw),
		Registry:      formatRegistry(raw.RegistryRecords),
		SocialMedia:   formatSocial(raw),
		PublicRecords: formatPublicRecords(raw.PublicRecords),
		ImageMetadata: formatImageMetadata(raw.AttachedMetadata),
		Summary:       raw.Summary,
		GeneratedAt:   raw.GeneratedAt,
	}
}

// formatOther builds the bounded mixed section: work profiles, general
// search hits, discovered emails, and breach mentions.
func formatOther(raw *model.RawCompositeReport) []model.OtherItem {
	items := make([]model.OtherItem, 0,
		maxWorkProfileItems+maxOtherInfoItems+maxEmailItems+maxBreachItems)

	for _, hit := range head(raw.WebSearch.WorkProfiles, maxWorkProfileItems) {
		items = append(items, model.OtherItem{
			Source:      "Work Profile",
			Link:        hit.Link,
			Description: truncateWords(firstNonEmpty(hit.Snippet, hit.Title)),
		})
	}

	for _, hit := range head(raw.WebSearch.OtherInfo, maxOtherInfoItems) {
		items = append(items, model.OtherItem{
			Source:      "Web Search",
			Link:        hit.Link,
			Description: truncateWords(firstNonEmpty(hit.Snippet, hit.Title)),
		})
	}

	for _, email := range head(raw.EmailPhone.Emails, maxEmailItems) {
		items = append(items, model.OtherItem{
			Source:      "Email",
			Link:        email.Link,
			Description: truncateWords(firstNonEmpty(email.Description, email.Address)),
		})
	}

	for _, breach := range head(raw.BreachData.Breaches, maxBreachItems) {
		items = append(items, model.OtherItem{
			Source:      "Breach",
			Link:        breach.Link,
			Description: truncateWords(firstNonEmpty(breach.Description, breach.Name)),
		})
	}

	return items
}

// registryField binds a canonical field name to its accessor. The field
// lists below fix the projection order and the complete set of fields a
// canonical registry record may expose.
type registryField[T any] struct {
	name  string
	value func(*T) string
}

var voterFields = []registryField[model.VoterRecord]{
	{"epic_number", func(r *model.VoterRecord) string { return r.EpicNumber }},
	{"name", func(r *model.VoterRecord) string { return r.Name }},
	{"age", func(r *model.VoterRecord) string { return r.Age }},
	{"dob", func(r *model.VoterRecord) string { return r.DOB }},
	{"gender", func(r *model.VoterRecord) string { return r.Gender }},
	{"address", func(r *model.VoterRecord) string { return r.Address }},
	{"father_name", func(r *model.VoterRecord) string { return r.FatherName }},
	{"relation_name", func(r *model.VoterRecord) string { return r.RelationName }},
	{"state", func(r *model.VoterRecord) string { return r.State }},
	{"assembly_constituency", func(r *model.VoterRecord) string { return r.AssemblyConstituency }},
	{"parliamentary_constituency", func(r *model.VoterRecord) string { return r.ParliamentaryConstituency }},
	{"part_number", func(r *model.VoterRecord) string { return r.PartNumber }},
	{"serial_number", func(r *model.VoterRecord) string { return r.SerialNumber }},
	{"polling_station", func(r *model.VoterRecord) string { return r.PollingStation }},
	{"photo", func(r *model.VoterRecord) string { return r.Photo }},
}

var panFields = []registryField[model.PanRecord]{
	{"pan_number", func(r *model.PanRecord) string { return r.PanNumber }},
	{"name", func(r *model.PanRecord) string { return r.Name }},
	{"dob", func(r *model.PanRecord) string { return r.DOB }},
	{"father_name", func(r *model.PanRecord) string { return r.FatherName }},
	{"date_of_issue", func(r *model.PanRecord) string { return r.DateOfIssue }},
	{"photo_link", func(r *model.PanRecord) string { return r.PhotoLink }},
}

var aadharFields = []registryField[model.AadharRecord]{
	{"ref_id", func(r *model.AadharRecord) string { return r.RefID }},
	{"status", func(r *model.AadharRecord) string { return r.Status }},
	{"name", func(r *model.AadharRecord) string { return r.Name }},
	{"dob", func(r *model.AadharRecord) string { return r.DOB }},
	{"address", func(r *model.AadharRecord) string { return r.Address }},
	{"email", func(r *model.AadharRecord) string { return r.Email }},
	{"gender", func(r *model.AadharRecord) string { return r.Gender }},
	{"year_of_birth", func(r *model.AadharRecord) string { return r.YearOfBirth }},
	{"photo", func(r *model.AadharRecord) string { return r.Photo }},
}

var criminalFields = []registryField[model.CriminalRecord]{
	{"name", func(r *model.CriminalRecord) string { return r.Name }},
	{"case_number", func(r *model.CriminalRecord) string { return r.CaseNumber }},
	{"status", func(r *model.CriminalRecord) string { return r.Status }},
	{"charges", func(r *model.CriminalRecord) string { return strings.Join(r.Charges, ", ") }},
	{"filing_date", func(r *model.CriminalRecord) string { return r.FilingDate }},
	{"court", func(r *model.CriminalRecord) string { return r.Court }},
	{"address", func(r *model.CriminalRecord) string { return r.Address }},
}

// formatRegistry projects the four registry payloads into filtered
// field maps. Photo and image fields are stripped, as are values too
// large to be readable fields.
func formatRegistry(records model.RegistryRecords) model.CanonicalRegistry {
	reg := model.CanonicalRegistry{
		Voter:    make([]map[string]string, 0, len(records.Voter)),
		Pan:      make([]map[string]string, 0, len(records.Pan)),
		Aadhar:   make([]map[string]string, 0, len(records.Aadhar)),
		Criminal: make([]map[string]string, 0, len(records.Criminal)),
	}

	for i := range records.Voter {
		reg.Voter = append(reg.Voter, projectFields(voterFields, &records.Voter[i]))
	}
	for i := range records.Pan {
		reg.Pan = append(reg.Pan, projectFields(panFields, &records.Pan[i]))
	}
	for i := range records.Aadhar {
		reg.Aadhar = append(reg.Aadhar, projectFields(aadharFields, &records.Aadhar[i]))
	}
	for i := range records.Criminal {
		reg.Criminal = append(reg.Criminal, projectFields(criminalFields, &records.Criminal[i]))
	}

	return reg
}

// projectFields builds a field map from the canonical field list,
// dropping photo/image fields, empty values, and oversized values.
func projectFields[T any](fields []registryField[T], record *T) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if isPhotoField(f.name) {
			continue
		}
		v := f.value(record)
		if v == "" || len(v) > maxRegistryValueLength {
			continue
		}
		out[f.name] = v
	}
	return out
}

// isPhotoField reports whether a registry field carries image data.
func isPhotoField(name string) bool {
	return strings.Contains(name, "photo") || strings.Contains(name, "image")
}

// formatSocial resolves at most one profile per platform. A hit from
// the dedicated social media provider always wins; web search hits
// pointing at the platform's domain are the fallback.
func formatSocial(raw *model.RawCompositeReport) model.CanonicalSocial {
	return model.CanonicalSocial{
		Facebook:  resolvePlatform(raw, raw.SocialMedia.Facebook, "facebook.com"),
		Instagram: resolvePlatform(raw, raw.SocialMedia.Instagram, "instagram.com"),
		LinkedIn:  resolvePlatform(raw, raw.SocialMedia.LinkedIn, "linkedin.com"),
		Twitter:   resolvePlatform(raw, raw.SocialMedia.Twitter, "twitter.com", "x.com"),
	}
}

func resolvePlatform(raw *model.RawCompositeReport, profiles []model.SocialProfile, domains ...string) *model.LinkDescription {
	if len(profiles) > 0 {
		p := profiles[0]
		return &model.LinkDescription{
			Link:        p.Link,
			Description: truncateWords(firstNonEmpty(p.Bio, p.Name, p.Handle)),
		}
	}

	for _, hit := range raw.WebSearch.SocialMedia {
		for _, domain := range domains {
			if strings.Contains(strings.ToLower(hit.Link), domain) {
				return &model.LinkDescription{
					Link:        hit.Link,
					Description: truncateWords(firstNonEmpty(hit.Snippet, hit.Title)),
				}
			}
		}
	}

	return nil
}

// formatPublicRecords keeps the first business and property record.
func formatPublicRecords(records model.PublicRecordsData) model.CanonicalPublicRecords {
	var out model.CanonicalPublicRecords

	if len(records.BusinessRecords) > 0 {
		b := records.BusinessRecords[0]
		out.BusinessRecords = &model.LinkDescription{
			Link:        b.Link,
			Description: truncateWords(firstNonEmpty(b.Description, b.CompanyName)),
		}
	}

	if len(records.PropertyRecords) > 0 {
		p := records.PropertyRecords[0]
		out.PropertyRecords = &model.LinkDescription{
			Link:        p.Link,
			Description: truncateWords(firstNonEmpty(p.Description, p.Address)),
		}
	}

	return out
}

// formatImageMetadata projects caller-supplied image metadata from the
// attached metadata map. Returns nil when no image data was attached.
func formatImageMetadata(attached map[string]any) *model.ImageMetadata {
	if len(attached) == 0 {
		return nil
	}

	var meta model.ImageMetadata

	if camera, ok := attached["camera"].(string); ok {
		meta.Camera = camera
	} else {
		maker, _ := attached["camera_make"].(string)
		mdl, _ := attached["camera_model"].(string)
		meta.Camera = strings.TrimSpace(maker + " " + mdl)
	}

	loc := &model.ImageLocation{}
	hasLocation := false
	if lat, ok := toFloat(attached["latitude"]); ok {
		loc.Latitude = lat
		hasLocation = true
	}
	if lon, ok := toFloat(attached["longitude"]); ok {
		loc.Longitude = lon
		hasLocation = true
	}
	for key, dst := range map[string]*string{
		"address": &loc.Address,
		"city":    &loc.City,
		"state":   &loc.State,
		"country": &loc.Country,
	} {
		if v, ok := attached[key].(string); ok && v != "" {
			*dst = v
			hasLocation = true
		}
	}
	if hasLocation {
		meta.Location = loc
	}

	if meta.Camera == "" && meta.Location == nil {
		return nil
	}
	return &meta
}

// toFloat accepts the numeric types JSON decoding and direct assignment
// can produce for coordinates.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// truncateWords bounds a description to maxDescriptionWords words,
// appending an ellipsis when anything was cut. Empty input maps to the
// placeholder description.
func truncateWords(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return noDescription
	}
	if len(words) <= maxDescriptionWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxDescriptionWords], " ") + "..."
}

// head returns at most n leading elements of s.
func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
