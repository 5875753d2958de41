package models

// RuleKind selects how a generation rule produces values.
type RuleKind string

const (
	RuleDisabled  RuleKind = "disabled"
	RuleLiteral   RuleKind = "literal"
	RuleGenerator RuleKind = "generator"
	RuleChoice    RuleKind = "choice"
)

// RuleParam is one named argument of a generator call. Params are kept as an
// ordered list so rendered recipes are stable.
type RuleParam struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// WeightedChoice is one value of a choice rule with its weight. Weights of
// a rule are percentages when they sum to 100 and relative otherwise.
type WeightedChoice struct {
	Value  string `json:"value"`
	Weight int    `json:"weight"`
}

// GenerationRule describes how synthetic values for one field are produced.
//
// Literal rules carry Template. Generator rules carry Generator and either a
// scalar Argument or Params. Choice rules carry Choices.
type GenerationRule struct {
	Field      string           `json:"field"`
	SourceType string           `json:"source_type,omitempty"`
	Kind       RuleKind         `json:"kind"`
	Template   string           `json:"template,omitempty"`
	Generator  string           `json:"generator,omitempty"`
	Argument   string           `json:"argument,omitempty"`
	Params     []RuleParam      `json:"params,omitempty"`
	Choices    []WeightedChoice `json:"choices,omitempty"`
}

// Enabled reports whether the rule produces any value.
func (r *GenerationRule) Enabled() bool {
	return r.Kind != "" && r.Kind != RuleDisabled
}

// RecipeDocument maps object name to its rules keyed by field name.
type RecipeDocument map[string]map[string]GenerationRule
