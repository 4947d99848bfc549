package models

// ScrapeJob describes one scrape invocation. The backend owns any bookkeeping.
type ScrapeJob struct {
	Keywords string `validate:"required"`
	Location string `validate:"required"`
	MaxPages int    `validate:"min=1,max=50"`
	Enrich   bool
	Headless bool
	DelayMin float64 `validate:"gte=0"`
	DelayMax float64 `validate:"gte=0,gtefield=DelayMin"`
}

type ScrapeAck struct {
	Found   int `json:"found"`
	Created int `json:"created"`
}

// ScrapeManifest maps an output label (csv, json, ...) to a file path.
type ScrapeManifest struct {
	Found    int               `json:"found"`
	Exported int               `json:"exported"`
	Files    map[string]string `json:"files"`
}
