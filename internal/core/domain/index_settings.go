package domain

// IndexSettings is the attribute and ranking configuration of the index.
// A nil list or map leaves the corresponding engine setting unchanged.
type IndexSettings struct {
	SearchableAttributes []string            `json:"searchableAttributes,omitempty"`
	FilterableAttributes []string            `json:"filterableAttributes,omitempty"`
	SortableAttributes   []string            `json:"sortableAttributes,omitempty"`
	DisplayedAttributes  []string            `json:"displayedAttributes,omitempty"`
	RankingRules         []string            `json:"rankingRules,omitempty"`
	Synonyms             map[string][]string `json:"synonyms,omitempty"`
}

// searchableCore is the shared prefix of every searchable attribute list,
// ordered by importance.
var searchableCore = []string{
	FieldSFNumber,
	FieldClientName,
	"Description",
	FieldClientContactBuyingCenter,
	FieldClientJourney,
	FieldDocumentConfidentiality,
	FieldDocumentValueRange,
	FieldDocumentOutcome,
	FieldLastStageChangeDate,
	"searchableText",
	FieldClientType,
	FieldDocumentType,
	FieldDocumentSubType,
	FieldUniqueID,
	FieldClientContact,
	FieldIndustry,
	FieldSubIndustry,
	FieldService,
	FieldSubService,
	FieldState,
	FieldCity,
	FieldCommercialProgram,
	FieldAuthor,
	FieldSMEs,
	FieldCompetitors,
	"attachments_text",
	FieldBusinessUnit,
	FieldRegion,
	FieldCountry,
}

func filterableAttributes() []string {
	attrs := []string{
		FieldSFNumber,
		FieldClientType,
		FieldDocumentType,
		FieldDocumentSubType,
		FieldDocumentConfidentiality,
		FieldDocumentOutcome,
		FieldIndustry,
		FieldSubIndustry,
		FieldService,
		FieldSubService,
		FieldRegion,
		FieldBusinessUnit,
		FieldCountry,
		FieldState,
		FieldCity,
		FieldCommercialProgram,
		FieldClientJourney,
		FieldDocumentValueRange,
		"has_attachments",
		"attachments_count",
		"publishedAt",
		"createdAt",
		"updatedAt",
		FieldLastStageChangeDate,
	}
	for _, name := range FilterFieldNames() {
		attrs = append(attrs, FiltersNamespace+"."+name)
	}
	return attrs
}

func sortableAttributes() []string {
	return []string{
		"createdAt",
		"updatedAt",
		"publishedAt",
		FieldLastStageChangeDate,
		FieldUniqueID,
		FieldClientName,
		FieldDocumentValueRange,
		"attachments_count",
		FieldSFNumber,
	}
}

// DefaultIndexSettings returns the full settings bundle applied by a
// configure operation. Every list is overwritten on each call.
func DefaultIndexSettings() IndexSettings {
	searchable := append([]string{}, searchableCore...)
	searchable = append(searchable, "Attachments.name", "Attachments.alternativeText")

	return IndexSettings{
		SearchableAttributes: searchable,
		FilterableAttributes: filterableAttributes(),
		SortableAttributes:   sortableAttributes(),
		DisplayedAttributes:  []string{"*"},
		RankingRules: []string{
			"words",
			"typo",
			"proximity",
			"attribute",
			"sort",
			"exactness",
		},
		Synonyms: map[string][]string{
			"proposal":   {"rfp", "request for proposal", "tender"},
			"client":     {"customer", "account", "company"},
			"document":   {"doc", "file", "record"},
			"sme":        {"subject matter expert", "expert", "specialist"},
			"won":        {"successful", "awarded", "victory"},
			"lost":       {"unsuccessful", "rejected", "defeat"},
			"attachment": {"file", "document", "upload", "pdf"},
			"competitor": {"rival", "competition", "competing company"},
			"journey":    {"stage", "phase", "step"},
			"outcome":    {"result", "status", "decision"},
			"program":    {"initiative", "project", "campaign"},
		},
	}
}

// CompleteIndexSettings returns the reference attribute set applied by
// configure-complete. Ranking rules and synonyms are left untouched.
func CompleteIndexSettings() IndexSettings {
	return IndexSettings{
		SearchableAttributes: append([]string{}, searchableCore...),
		FilterableAttributes: filterableAttributes(),
		SortableAttributes:   sortableAttributes(),
		DisplayedAttributes:  []string{"*"},
	}
}
