package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Business field names as they appear in the record store and the index.
const (
	FieldSFNumber                  = "SF_Number"
	FieldUniqueID                  = "Unique_Id"
	FieldClientName                = "Client_Name"
	FieldClientType                = "Client_Type"
	FieldClientContact             = "Client_Contact"
	FieldClientContactBuyingCenter = "Client_Contact_Buying_Center"
	FieldClientJourney             = "Client_Journey"
	FieldDocumentConfidentiality   = "Document_Confidentiality"
	FieldDocumentType              = "Document_Type"
	FieldDocumentSubType           = "Document_Sub_Type"
	FieldDocumentValueRange        = "Document_Value_Range"
	FieldDocumentOutcome           = "Document_Outcome"
	FieldLastStageChangeDate       = "Last_Stage_Change_Date"
	FieldIndustry                  = "Industry"
	FieldSubIndustry               = "Sub_Industry"
	FieldService                   = "Service"
	FieldSubService                = "Sub_Service"
	FieldBusinessUnit              = "Business_Unit"
	FieldRegion                    = "Region"
	FieldCountry                   = "Country"
	FieldState                     = "State"
	FieldCity                      = "City"
	FieldAuthor                    = "Author"
	FieldSMEs                      = "SMEs"
	FieldCommercialProgram         = "Commercial_Program"
	FieldCompetitors               = "Competitors"
)

// sfNumberPattern is the format of the record uniqueness key.
var sfNumberPattern = regexp.MustCompile(`^SF\d{3}$`)

// Record is the canonical, mutable entry owned by the record store.
// It is the source of truth from which search documents are derived.
type Record struct {
	// ID is the store-assigned numeric identifier.
	ID int64 `json:"id"`

	// DocumentID is the stable opaque identifier assigned on create.
	DocumentID string `json:"documentId"`

	// Locale is the content locale, if any.
	Locale string `json:"locale"`

	SFNumber                  string `json:"SF_Number"`
	UniqueID                  string `json:"Unique_Id"`
	ClientName                string `json:"Client_Name"`
	ClientType                string `json:"Client_Type"`
	ClientContact             string `json:"Client_Contact"`
	ClientContactBuyingCenter string `json:"Client_Contact_Buying_Center"`
	ClientJourney             string `json:"Client_Journey"`
	DocumentConfidentiality   string `json:"Document_Confidentiality"`
	DocumentType              string `json:"Document_Type"`
	DocumentSubType           string `json:"Document_Sub_Type"`
	DocumentValueRange        string `json:"Document_Value_Range"`
	DocumentOutcome           string `json:"Document_Outcome"`
	LastStageChangeDate       string `json:"Last_Stage_Change_Date"`
	Industry                  string `json:"Industry"`
	SubIndustry               string `json:"Sub_Industry"`
	Service                   string `json:"Service"`
	SubService                string `json:"Sub_Service"`
	BusinessUnit              string `json:"Business_Unit"`
	Region                    string `json:"Region"`
	Country                   string `json:"Country"`
	State                     string `json:"State"`
	City                      string `json:"City"`
	Author                    string `json:"Author"`
	SMEs                      string `json:"SMEs"`
	CommercialProgram         string `json:"Commercial_Program"`
	Competitors               string `json:"Competitors"`

	// Description is the rich-text body as an ordered list of blocks.
	Description []Block `json:"Description"`

	// Attachments are the media files referenced by the record.
	// A nil slice means the relation was not loaded; an empty slice means
	// the record has no attachments.
	Attachments []Attachment `json:"Attachments"`

	// PublishedAt is nil while the record is a draft.
	PublishedAt *time.Time `json:"publishedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// ManualOverride marks records that must not be refreshed automatically
	// from the enrichment API.
	ManualOverride bool `json:"manualOverride"`
}

// Block is a rich-text block node.
type Block struct {
	Type     string   `json:"type"`
	Children []Inline `json:"children,omitempty"`
}

// Inline is a child node of a rich-text block.
type Inline struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Attachment is a media file referenced by a record.
type Attachment struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	AlternativeText string  `json:"alternativeText"`
	Caption         string  `json:"caption"`
	URL             string  `json:"url"`
	Ext             string  `json:"ext"`
	Mime            string  `json:"mime"`
	Size            float64 `json:"size"`
}

// IsPublished reports whether the record is eligible for the index.
func (r *Record) IsPublished() bool {
	return r.PublishedAt != nil && !r.PublishedAt.IsZero()
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	if r.Description != nil {
		c.Description = make([]Block, len(r.Description))
		for i, b := range r.Description {
			c.Description[i] = Block{Type: b.Type, Children: append([]Inline(nil), b.Children...)}
		}
	}
	if r.Attachments != nil {
		c.Attachments = append([]Attachment{}, r.Attachments...)
	}
	if r.PublishedAt != nil {
		t := *r.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

// AttachmentIDs returns the identifiers of the loaded attachments.
func (r *Record) AttachmentIDs() []int64 {
	ids := make([]int64, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		ids = append(ids, a.ID)
	}
	return ids
}

// businessField binds a field name to its storage on a Record.
type businessField struct {
	name string
	ref  func(*Record) *string
}

// businessFields lists every business field in declaration order.
var businessFields = []businessField{
	{FieldSFNumber, func(r *Record) *string { return &r.SFNumber }},
	{FieldUniqueID, func(r *Record) *string { return &r.UniqueID }},
	{FieldClientName, func(r *Record) *string { return &r.ClientName }},
	{FieldClientType, func(r *Record) *string { return &r.ClientType }},
	{FieldClientContact, func(r *Record) *string { return &r.ClientContact }},
	{FieldClientContactBuyingCenter, func(r *Record) *string { return &r.ClientContactBuyingCenter }},
	{FieldClientJourney, func(r *Record) *string { return &r.ClientJourney }},
	{FieldDocumentConfidentiality, func(r *Record) *string { return &r.DocumentConfidentiality }},
	{FieldDocumentType, func(r *Record) *string { return &r.DocumentType }},
	{FieldDocumentSubType, func(r *Record) *string { return &r.DocumentSubType }},
	{FieldDocumentValueRange, func(r *Record) *string { return &r.DocumentValueRange }},
	{FieldDocumentOutcome, func(r *Record) *string { return &r.DocumentOutcome }},
	{FieldLastStageChangeDate, func(r *Record) *string { return &r.LastStageChangeDate }},
	{FieldIndustry, func(r *Record) *string { return &r.Industry }},
	{FieldSubIndustry, func(r *Record) *string { return &r.SubIndustry }},
	{FieldService, func(r *Record) *string { return &r.Service }},
	{FieldSubService, func(r *Record) *string { return &r.SubService }},
	{FieldBusinessUnit, func(r *Record) *string { return &r.BusinessUnit }},
	{FieldRegion, func(r *Record) *string { return &r.Region }},
	{FieldCountry, func(r *Record) *string { return &r.Country }},
	{FieldState, func(r *Record) *string { return &r.State }},
	{FieldCity, func(r *Record) *string { return &r.City }},
	{FieldAuthor, func(r *Record) *string { return &r.Author }},
	{FieldSMEs, func(r *Record) *string { return &r.SMEs }},
	{FieldCommercialProgram, func(r *Record) *string { return &r.CommercialProgram }},
	{FieldCompetitors, func(r *Record) *string { return &r.Competitors }},
}

// BusinessFieldNames returns the names of all business fields in order.
func BusinessFieldNames() []string {
	names := make([]string, len(businessFields))
	for i, f := range businessFields {
		names[i] = f.name
	}
	return names
}

// IsBusinessField reports whether name is a known business field.
func IsBusinessField(name string) bool {
	for _, f := range businessFields {
		if f.name == name {
			return true
		}
	}
	return false
}

// Field returns the value of a business field by name.
func (r *Record) Field(name string) (string, bool) {
	for _, f := range businessFields {
		if f.name == name {
			return *f.ref(r), true
		}
	}
	return "", false
}

// SetField assigns a business field by name.
// Returns false if the name is not a business field.
func (r *Record) SetField(name, value string) bool {
	for _, f := range businessFields {
		if f.name == name {
			*f.ref(r) = value
			return true
		}
	}
	return false
}

// Fields returns all business field values keyed by name.
func (r *Record) Fields() map[string]string {
	out := make(map[string]string, len(businessFields))
	for _, f := range businessFields {
		out[f.name] = *f.ref(r)
	}
	return out
}

// ValidateSFNumber checks the uniqueness key format.
// An empty key is valid; the key is optional.
func ValidateSFNumber(sf string) error {
	if sf == "" {
		return nil
	}
	if !sfNumberPattern.MatchString(sf) {
		return fmt.Errorf("%w: SF_Number must be in format SF001, SF002, etc.", ErrInvalidInput)
	}
	return nil
}

// RecordFilter narrows a record listing.
type RecordFilter struct {
	// PublicationState selects drafts and published records ("preview")
	// or published records only ("live"). Empty means preview.
	PublicationState PublicationState

	// Limit caps the result size; zero means no limit.
	Limit int

	// Offset skips the first records.
	Offset int
}

// PublicationState selects which records a listing includes.
type PublicationState string

// Publication states.
const (
	PublicationPreview PublicationState = "preview"
	PublicationLive    PublicationState = "live"
)

// IsValid returns true if the publication state is recognised.
func (p PublicationState) IsValid() bool {
	switch p {
	case "", PublicationPreview, PublicationLive:
		return true
	default:
		return false
	}
}
