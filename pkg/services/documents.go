package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/schemaforge/pkg/apperrors"
	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// EncodeSchemaDocument renders doc as indented JSON with sorted keys.
func EncodeSchemaDocument(doc models.SchemaDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode schema document: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeSchemaDocument parses and validates a schema document. Any
// structural problem is reported as apperrors.ErrInvalidDocument.
func DecodeSchemaDocument(data []byte) (models.SchemaDocument, error) {
	var doc models.SchemaDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidDocument, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document must be an object of objects", apperrors.ErrInvalidDocument)
	}
	if err := ValidateSchemaDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ValidateSchemaDocument checks the minimal structure a loaded document must
// have: non-empty object names, columns named after their keys, known type
// tags, non-negative sizes and enumerated values only on enum columns.
func ValidateSchemaDocument(doc models.SchemaDocument) error {
	for objectName, cols := range doc {
		if objectName == "" {
			return fmt.Errorf("%w: empty object name", apperrors.ErrInvalidDocument)
		}
		if cols == nil {
			return fmt.Errorf("%w: object %s has no columns", apperrors.ErrInvalidDocument, objectName)
		}
		for key, col := range cols {
			where := objectName + "." + key
			switch {
			case col.Name == "":
				return fmt.Errorf("%w: %s: missing name", apperrors.ErrInvalidDocument, where)
			case col.Name != key:
				return fmt.Errorf("%w: %s: name %q does not match key", apperrors.ErrInvalidDocument, where, col.Name)
			case !col.Type.IsValid():
				return fmt.Errorf("%w: %s: unknown type %q", apperrors.ErrInvalidDocument, where, col.Type)
			case col.Size < 0 || col.Precision < 0 || col.Scale < 0:
				return fmt.Errorf("%w: %s: negative size", apperrors.ErrInvalidDocument, where)
			case len(col.Values) > 0 && col.Type != models.ColumnEnum:
				return fmt.Errorf("%w: %s: values on non-enum column", apperrors.ErrInvalidDocument, where)
			}
		}
	}
	return nil
}

// RecipeSelection names one object of a recipe and how many records to
// generate for it.
type RecipeSelection struct {
	Object string `json:"object"`
	Count  int    `json:"count"`
}

// EncodeRecipe renders the rule sets in doc as a recipe: a YAML sequence of
// {object, count, fields} blocks in selection order. With no selections
// every object is emitted in name order. Counts below one use defaultCount.
func EncodeRecipe(doc models.RecipeDocument, selections []RecipeSelection, defaultCount int) ([]byte, error) {
	if len(selections) == 0 {
		names := make([]string, 0, len(doc))
		for name := range doc {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			selections = append(selections, RecipeSelection{Object: name})
		}
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, sel := range selections {
		rules, ok := doc[sel.Object]
		if !ok {
			return nil, fmt.Errorf("object %s has no recipe rules: %w", sel.Object, apperrors.ErrNotFound)
		}
		count := sel.Count
		if count < 1 {
			count = defaultCount
		}
		block, err := recipeBlock(sel.Object, count, rules)
		if err != nil {
			return nil, err
		}
		seq.Content = append(seq.Content, block)
	}

	root := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "Generated recipe",
		Content:     []*yaml.Node{seq},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encode recipe: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode recipe: %w", err)
	}
	return buf.Bytes(), nil
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func intScalar(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)}
}

func recipeBlock(object string, count int, rules map[string]models.GenerationRule) (*yaml.Node, error) {
	fieldNames := make([]string, 0, len(rules))
	for name, rule := range rules {
		if rule.Enabled() {
			fieldNames = append(fieldNames, name)
		}
	}
	sort.Strings(fieldNames)

	fields := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range fieldNames {
		rule := rules[name]
		value, err := ruleNode(rule)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", object, name, err)
		}
		key := scalar(name)
		if rule.SourceType != "" {
			key.LineComment = rule.SourceType
		}
		fields.Content = append(fields.Content, key, value)
	}

	objectValue := scalar(object)
	objectValue.LineComment = fmt.Sprintf("%d fields", len(fieldNames))

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			scalar("object"), objectValue,
			scalar("count"), intScalar(count),
			scalar("fields"), fields,
		},
	}, nil
}

func ruleNode(rule models.GenerationRule) (*yaml.Node, error) {
	switch rule.Kind {
	case models.RuleLiteral:
		return scalar(rule.Template), nil
	case models.RuleGenerator:
		var arg *yaml.Node
		if len(rule.Params) == 0 {
			arg = scalar(rule.Argument)
		} else {
			arg = &yaml.Node{Kind: yaml.MappingNode}
			for _, p := range rule.Params {
				v := &yaml.Node{}
				if err := v.Encode(p.Value); err != nil {
					return nil, err
				}
				arg.Content = append(arg.Content, scalar(p.Key), v)
			}
		}
		return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar(rule.Generator), arg}}, nil
	case models.RuleChoice:
		total := 0
		for _, c := range rule.Choices {
			total += c.Weight
		}
		choices := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range rule.Choices {
			weight := intScalar(c.Weight)
			if total == 100 {
				weight = scalar(fmt.Sprintf("%d%%", c.Weight))
			}
			choices.Content = append(choices.Content, scalar(c.Value), weight)
		}
		return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar("random_choice"), choices}}, nil
	default:
		return nil, fmt.Errorf("rule kind %q has no recipe form", rule.Kind)
	}
}
