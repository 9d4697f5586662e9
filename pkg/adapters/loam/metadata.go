package loam

// BlueprintMetadata represents the frontmatter of an automaton document.
// It uses "mapstructure" tags to match the YAML keys written by authors.
type BlueprintMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Title string `json:"title" mapstructure:"title"`

	// Description overrides the markdown body when set.
	Description string `json:"description" mapstructure:"description"`

	// Rules is either a list of rule strings or one multi-line block.
	Rules any `json:"rules" mapstructure:"rules"`

	// Final lists the accepting states, or holds a "{q1,q2}" set.
	Final any `json:"final" mapstructure:"final"`

	// Examples accepts bare input strings or {input, expect} maps.
	Examples []any `json:"examples" mapstructure:"examples"`
}
