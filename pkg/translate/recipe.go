package translate

import (
	"strings"

	"github.com/ekaya-inc/schemaforge/pkg/apperrors"
	"github.com/ekaya-inc/schemaforge/pkg/models"
)

func fake(provider string) models.GenerationRule {
	return models.GenerationRule{Kind: models.RuleGenerator, Generator: "fake", Argument: provider}
}

func literal(template string) models.GenerationRule {
	return models.GenerationRule{Kind: models.RuleLiteral, Template: template}
}

func generator(name string, params ...models.RuleParam) models.GenerationRule {
	return models.GenerationRule{Kind: models.RuleGenerator, Generator: name, Params: params}
}

func param(key string, value any) models.RuleParam {
	return models.RuleParam{Key: key, Value: value}
}

var disabled = models.GenerationRule{Kind: models.RuleDisabled}

// typeRules holds the generation rule used for each primitive type when
// nothing more specific applies. Types missing here are disabled.
var typeRules = map[string]models.GenerationRule{
	"base64":          disabled,
	"boolean":         literal("${{ random_choice(True, False) }}"),
	"byte":            disabled,
	"calculated":      disabled,
	"combobox":        fake("Word"),
	"currency":        generator("random_number", param("min", 0), param("max", 10000)),
	"date":            generator("date_between", param("start_date", "-1y"), param("end_date", "today")),
	"datetime":        generator("datetime_between", param("start_date", "-1y"), param("end_date", "now")),
	"double":          generator("random_number", param("min", 0), param("max", 10000)),
	"email":           fake("Email"),
	"encryptedstring": disabled,
	"id":              disabled,
	"int":             generator("random_number", param("min", 0), param("max", 1000)),
	"long":            generator("random_number", param("min", 0), param("max", 100000)),
	"masterrecord":    disabled,
	"percent":         generator("random_number", param("min", 0), param("max", 100)),
	"phone":           fake("PhoneNumber"),
	"reference":       disabled,
	"string":          literal("${{fake.Sentence(nb_words=4)}}"),
	"textarea":        fake("Paragraph"),
	"time":            fake("Time"),
	"url":             fake("Url"),
}

// fieldOverrides replaces type based rules for well known object fields.
// Keys are "Object.Field".
var fieldOverrides = map[string]models.GenerationRule{
	"Account.Name":        fake("Company"),
	"Account.Website":     fake("Url"),
	"Campaign.Name":       fake("CatchPhrase"),
	"Contact.Birthdate":   generator("date_between", param("start_date", "-80y"), param("end_date", "-18y")),
	"Contact.Email":       fake("Email"),
	"Contact.FirstName":   fake("FirstName"),
	"Contact.LastName":    fake("LastName"),
	"Contact.MailingCity": fake("City"),
	"Contact.Title":       fake("JobTitle"),
	"Lead.Company":        fake("Company"),
	"Lead.Email":          fake("Email"),
	"Lead.FirstName":      fake("FirstName"),
	"Lead.LastName":       fake("LastName"),
	"Opportunity.Name":    fake("CatchPhrase"),
	"User.Email":          fake("Email"),
	"User.FirstName":      fake("FirstName"),
	"User.LastName":       fake("LastName"),
}

// ForRecipe translates one field of objectName into a generation rule.
// Callers omit rules that are not Enabled.
func ForRecipe(objectName string, f *models.FieldDescriptor, prefs *models.Preferences) (models.GenerationRule, error) {
	if prefs == nil {
		return models.GenerationRule{}, apperrors.ErrPreferencesNotSet
	}

	rule, ok := typeRules[strings.ToLower(f.Type)]
	if !ok {
		rule = disabled
	}
	if f.IsChoice() {
		rule = ChoiceRule(uniqueValues(f.PicklistValues))
	}
	if override, ok := fieldOverrides[objectName+"."+f.Name]; ok {
		rule = override
	}

	rule = cloneRule(rule)
	rule.Field = f.Name
	rule.SourceType = f.Type
	return rule, nil
}

// ChoiceRule builds a weighted random choice over values. Up to 100 values
// get equal percentages summing to 100 with any remainder given to the first
// values. Longer lists get a relative weight of 1 each so no value drops to
// zero.
// An empty value list yields a disabled rule.
func ChoiceRule(values []string) models.GenerationRule {
	if len(values) == 0 {
		return disabled
	}
	if len(values) > 100 {
		choices := make([]models.WeightedChoice, len(values))
		for i, v := range values {
			choices[i] = models.WeightedChoice{Value: v, Weight: 1}
		}
		return models.GenerationRule{Kind: models.RuleChoice, Choices: choices}
	}
	base := 100 / len(values)
	extra := 100 % len(values)
	choices := make([]models.WeightedChoice, len(values))
	for i, v := range values {
		w := base
		if i < extra {
			w++
		}
		choices[i] = models.WeightedChoice{Value: v, Weight: w}
	}
	return models.GenerationRule{Kind: models.RuleChoice, Choices: choices}
}

func cloneRule(r models.GenerationRule) models.GenerationRule {
	r.Params = append([]models.RuleParam(nil), r.Params...)
	r.Choices = append([]models.WeightedChoice(nil), r.Choices...)
	return r
}
