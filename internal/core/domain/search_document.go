package domain

import "strconv"

// SearchDocument is the flattened projection of a Record sent to the index.
// Strings default to "", counts to 0 and flags to false. Dates are nil or
// rendered in CanonicalDateLayout.
type SearchDocument struct {
	ID         int64  `json:"id"`
	DocumentID string `json:"documentId"`

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

	PublishedAt *string `json:"publishedAt"`
	CreatedAt   *string `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
	Locale      string  `json:"locale"`

	// Description holds the extracted plain text, not the block tree.
	Description     string `json:"Description"`
	DescriptionText string `json:"description_text"`
	AttachmentsText string `json:"attachments_text"`

	Attachments      []SearchAttachment `json:"Attachments"`
	AttachmentsCount int                `json:"attachments_count"`
	HasAttachments   bool               `json:"has_attachments"`

	// SearchableText is the lower-cased catch-all text field.
	SearchableText string `json:"searchableText"`

	Filters SearchFilters `json:"filters"`
}

// SearchAttachment is the indexed view of an Attachment.
type SearchAttachment struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	AlternativeText string  `json:"alternativeText"`
	Caption         string  `json:"caption"`
	URL             string  `json:"url"`
	Ext             string  `json:"ext"`
	Mime            string  `json:"mime"`
	Size            float64 `json:"size"`
	SearchableText  string  `json:"searchableText"`
}

// SearchFilters is the nested facet namespace of a SearchDocument.
type SearchFilters struct {
	ClientType              string `json:"Client_Type"`
	DocumentType            string `json:"Document_Type"`
	DocumentSubType         string `json:"Document_Sub_Type"`
	DocumentConfidentiality string `json:"Document_Confidentiality"`
	DocumentOutcome         string `json:"Document_Outcome"`
	Industry                string `json:"Industry"`
	SubIndustry             string `json:"Sub_Industry"`
	Service                 string `json:"Service"`
	SubService              string `json:"Sub_Service"`
	BusinessUnit            string `json:"Business_Unit"`
	Region                  string `json:"Region"`
	Country                 string `json:"Country"`
	State                   string `json:"State"`
	City                    string `json:"City"`
	CommercialProgram       string `json:"Commercial_Program"`
	HasAttachments          bool   `json:"has_attachments"`
}

// FiltersNamespace is the attribute prefix of the nested facet fields.
const FiltersNamespace = "filters"

// FilterFieldNames lists the keys accepted under the filters namespace.
func FilterFieldNames() []string {
	return []string{
		FieldClientType,
		FieldDocumentType,
		FieldDocumentSubType,
		FieldDocumentConfidentiality,
		FieldDocumentOutcome,
		FieldIndustry,
		FieldSubIndustry,
		FieldService,
		FieldSubService,
		FieldBusinessUnit,
		FieldRegion,
		FieldCountry,
		FieldState,
		FieldCity,
		FieldCommercialProgram,
		"has_attachments",
	}
}

// IsFilterField reports whether key is a field of the filters namespace.
func IsFilterField(key string) bool {
	for _, name := range FilterFieldNames() {
		if name == key {
			return true
		}
	}
	return false
}

// DocumentKey returns the index primary key value for a record id.
func DocumentKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
