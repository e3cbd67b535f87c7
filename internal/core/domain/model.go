package domain

// ModelID identifies an image model on the generation API.
type ModelID string

const (
	ModelFluxPro        ModelID = "TogetherImage/black-forest-labs/FLUX.1.1-pro"
	ModelFluxKontextMax ModelID = "TogetherImage/black-forest-labs/FLUX.1-kontext-max"
)

// Model describes an entry of the catalog.
type Model struct {
	ID      ModelID `json:"id"`
	Name    string  `json:"name"`
	Premium bool    `json:"premium"`
}

// Catalog lists the models offered to callers, in display order.
var Catalog = []Model{
	{ID: ModelFluxKontextMax, Name: "FLUX.1-kontext-max", Premium: true},
	{ID: ModelFluxPro, Name: "FLUX.1.1-pro", Premium: false},
}

// LookupModel returns the catalog entry for id.
func LookupModel(id ModelID) (Model, bool) {
	for _, m := range Catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// IsPremium reports whether id is tier-restricted. Unknown ids are treated as premium.
func IsPremium(id ModelID) bool {
	m, ok := LookupModel(id)
	return !ok || m.Premium
}
