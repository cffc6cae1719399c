package types

// ViewDef declares a saved view: the configuration of ordering and filters
// over one entity collection. Definitions come from YAML presets and from
// the views() remote operation; the view hub materializes them.
type ViewDef struct {
	ID       int      `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Target   Target   `json:"target" yaml:"target"`
	Ordering []string `json:"ordering" yaml:"ordering"`
	Filters  Filters  `json:"filters" yaml:"filters"`
}
