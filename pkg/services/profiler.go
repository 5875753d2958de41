package services

import (
	"strings"

	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// CustomObjectSuffix marks objects created in the org rather than shipped
// with the platform.
const CustomObjectSuffix = "__c"

// namespacePrefixes is checked in order; first match wins.
var namespacePrefixes = []struct {
	prefix  string
	profile models.OrgProfile
}{
	{"npsp", models.OrgProfileNPSP},
	{"npe", models.OrgProfileNPSP},
	{"hed", models.OrgProfileEDA},
}

var sharedStandardObjects = []string{
	"Account", "Contact", "Campaign", "CampaignMember", "Case", "ContentNote",
	"ContentDocumentLink", "Document", "RecordType", "Task", "User",
}

func withShared(extra ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(sharedStandardObjects)+len(extra))
	for _, name := range sharedStandardObjects {
		set[name] = struct{}{}
	}
	for _, name := range extra {
		set[name] = struct{}{}
	}
	return set
}

// standardObjects is the per-profile allow-list of platform objects worth
// selecting by default.
var standardObjects = map[models.OrgProfile]map[string]struct{}{
	models.OrgProfileNPSP:  withShared("Opportunity", "OpportunityContactRole"),
	models.OrgProfileEDA:   withShared("Lead"),
	models.OrgProfileOther: withShared("Lead", "Opportunity", "OpportunityContactRole", "Order", "OrderItem", "PriceBook2", "Product2"),
}

// ClassifyOrg returns the profile of the first object whose name starts
// with a known namespace prefix, or OrgProfileOther.
func ClassifyOrg(objects []models.GlobalObject) models.OrgProfile {
	for _, obj := range objects {
		for _, ns := range namespacePrefixes {
			if strings.HasPrefix(obj.Name, ns.prefix) {
				return ns.profile
			}
		}
	}
	return models.OrgProfileOther
}

// RecommendObjects returns, in input order, every object that is on the
// profile's allow-list or is a custom object.
func RecommendObjects(objects []models.GlobalObject) []string {
	return recommendForProfile(objects, ClassifyOrg(objects))
}

func recommendForProfile(objects []models.GlobalObject, profile models.OrgProfile) []string {
	allowed := standardObjects[profile]
	recommended := make([]string, 0)
	for _, obj := range objects {
		_, standard := allowed[obj.Name]
		if standard || strings.HasSuffix(obj.Name, CustomObjectSuffix) {
			recommended = append(recommended, obj.Name)
		}
	}
	return recommended
}

// ProfileOrg classifies an org's object list and derives its recommended
// selection.
func ProfileOrg(orgID string, objects []models.GlobalObject, limit *models.LimitInfo) *models.OrgObjects {
	profile := ClassifyOrg(objects)
	return &models.OrgObjects{
		OrgID:       orgID,
		Profile:     profile,
		Objects:     objects,
		Recommended: recommendForProfile(objects, profile),
		LimitInfo:   limit,
	}
}
