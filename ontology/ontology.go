// Package ontology holds the static id→label tables for prosthesis
// families, kinds, span types and rules, with locale negotiation over
// Accept-Language. English and French are available; English is the
// fallback for anything else.
package ontology

import (
	"net/http"

	"golang.org/x/text/language"

	"github.com/prosthocare/prostho-api/planner/entities"
	"github.com/prosthocare/prostho-api/planner/rules"
)

// Entry is one labeled identifier of the ontology.
type Entry struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Tables groups every ontology section for one locale.
type Tables struct {
	Locale    string  `json:"locale"`
	Families  []Entry `json:"families"`
	Kinds     []Entry `json:"kinds"`
	SpanTypes []Entry `json:"span_types"`
	Rules     []Entry `json:"rules"`
}

var supported = []language.Tag{
	language.English, // first entry is the fallback
	language.French,
}

var matcher = language.NewMatcher(supported)

// Negotiate resolves an Accept-Language header to a supported locale key.
func Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, index, _ := matcher.Match(tags...)
	if index == 1 {
		return "fr"
	}
	return "en"
}

// ForRequest returns the ontology tables for the request's locale.
func ForRequest(r *http.Request) Tables {
	return ForLocale(Negotiate(r.Header.Get("Accept-Language")))
}

// ForLocale returns the ontology tables for a locale key ("en" or "fr").
func ForLocale(locale string) Tables {
	if locale != "fr" {
		locale = "en"
	}
	return Tables{
		Locale:    locale,
		Families:  families[locale],
		Kinds:     kinds[locale],
		SpanTypes: spanTypes[locale],
		Rules:     ruleLabels[locale],
	}
}

var families = map[string][]Entry{
	"en": {
		{ID: string(entities.FamilyFixed), Label: "Fixed", Description: "Tooth-borne restorations cemented or bonded in place"},
		{ID: string(entities.FamilyRemovable), Label: "Removable", Description: "Patient-removable partial dentures"},
		{ID: string(entities.FamilyImplant), Label: "Implant", Description: "Implant-supported restorations"},
	},
	"fr": {
		{ID: string(entities.FamilyFixed), Label: "Fixe", Description: "Restaurations dento-portées scellées ou collées"},
		{ID: string(entities.FamilyRemovable), Label: "Amovible", Description: "Prothèses partielles amovibles"},
		{ID: string(entities.FamilyImplant), Label: "Implantaire", Description: "Restaurations implanto-portées"},
	},
}

var kinds = map[string][]Entry{
	"en": {
		{ID: string(entities.KindFDP), Label: "Fixed dental prosthesis", Description: "Conventional bridge on two abutments"},
		{ID: string(entities.KindCantilever), Label: "Cantilever bridge", Description: "Single-abutment bridge with an unsupported pontic"},
		{ID: string(entities.KindRBB), Label: "Resin-bonded bridge", Description: "Minimally invasive bonded bridge for anterior gaps"},
		{ID: string(entities.KindImplantSingle), Label: "Single implant crown", Description: "One implant replacing one tooth"},
		{ID: string(entities.KindImplantFDP), Label: "Implant-supported bridge", Description: "Bridge carried by two or more implants"},
		{ID: string(entities.KindRPD), Label: "Removable partial denture", Description: "Clasp- or attachment-retained removable prosthesis"},
	},
	"fr": {
		{ID: string(entities.KindFDP), Label: "Bridge conventionnel", Description: "Bridge classique sur deux piliers"},
		{ID: string(entities.KindCantilever), Label: "Bridge cantilever", Description: "Bridge à pilier unique avec extension"},
		{ID: string(entities.KindRBB), Label: "Bridge collé", Description: "Bridge collé peu invasif pour les édentements antérieurs"},
		{ID: string(entities.KindImplantSingle), Label: "Couronne sur implant", Description: "Un implant remplaçant une dent"},
		{ID: string(entities.KindImplantFDP), Label: "Bridge sur implants", Description: "Bridge porté par deux implants ou plus"},
		{ID: string(entities.KindRPD), Label: "Prothèse partielle amovible", Description: "Prothèse amovible à crochets ou attachements"},
	},
}

var spanTypes = map[string][]Entry{
	"en": {
		{ID: string(entities.SpanBounded), Label: "Bounded span", Description: "Gap with a natural tooth on both sides"},
		{ID: string(entities.SpanDistalExtension), Label: "Distal extension", Description: "Gap with no natural tooth at its distal end"},
	},
	"fr": {
		{ID: string(entities.SpanBounded), Label: "Édentement encastré", Description: "Édentement bordé par une dent naturelle de chaque côté"},
		{ID: string(entities.SpanDistalExtension), Label: "Extension distale", Description: "Édentement sans dent naturelle en distal"},
	},
}

var ruleLabels = map[string][]Entry{
	"en": {
		{ID: rules.RuleImplantContraindication, Label: "Implant contraindication", Description: "Systemic condition that rules out implant placement"},
		{ID: rules.RuleCantileverMobility, Label: "Cantilever abutment mobility", Description: "Cantilever abutment with Miller mobility grade 2 or higher"},
		{ID: rules.RuleCantileverCrownRoot, Label: "Cantilever abutment crown-root ratio", Description: "Cantilever abutment with a crown-root ratio below 1:1"},
		{ID: rules.RuleFixedCrownRootWorst, Label: "Fixed abutment crown-root ratio", Description: "Bridge abutment with a crown-root ratio below 1:1"},
		{ID: rules.RuleRBBEnamelNotOK, Label: "Insufficient enamel for bonding", Description: "Abutment enamel unsuitable for a resin-bonded retainer"},
		{ID: rules.RuleRBBHighCaries, Label: "High caries risk for bonded bridge", Description: "Bonded bridges are avoided in high caries risk patients"},
		{ID: rules.RuleCompromisedAbutment, Label: "Compromised abutment", Description: "Load-bearing abutment with compromised status"},
		{ID: rules.RuleOcclusionRisk, Label: "Unfavorable occlusion", Description: "Heavy occlusal scheme loading the restoration"},
		{ID: rules.RuleParafunction, Label: "Parafunction", Description: "Bruxism or clenching habits"},
		{ID: rules.RuleCariesOrHygiene, Label: "Caries or hygiene risk", Description: "Elevated caries risk or poor plaque control"},
		{ID: rules.RulePierRigidConnector, Label: "Pier abutment", Description: "Rigid connectors across a pier abutment risk debonding"},
		{ID: rules.RuleOpposingNaturalLoad, Label: "Opposing natural dentition", Description: "Natural opposing teeth increase functional load"},
		{ID: rules.RuleRPDComplexDesign, Label: "Complex removable design", Description: "Kennedy class and modifications complicate the framework"},
		{ID: rules.RuleSharedCantileverAbutment, Label: "Shared cantilever abutment", Description: "Two cantilevers cannot load the same abutment"},
		{ID: rules.RuleImplantSystemicLoad, Label: "Implant healing risk", Description: "Systemic factors that impair implant healing"},
		{ID: rules.RuleRemovableExcessPerArch, Label: "Multiple removable prostheses", Description: "More than one removable prosthesis planned in the same arch"},
		{ID: rules.InsufficientDataRuleID, Label: "Insufficient data", Description: "A required clinical field was not recorded"},
	},
	"fr": {
		{ID: rules.RuleImplantContraindication, Label: "Contre-indication implantaire", Description: "Condition systémique excluant la pose d'implant"},
		{ID: rules.RuleCantileverMobility, Label: "Mobilité du pilier cantilever", Description: "Pilier cantilever avec mobilité de Miller 2 ou plus"},
		{ID: rules.RuleCantileverCrownRoot, Label: "Rapport couronne-racine du pilier cantilever", Description: "Pilier cantilever avec un rapport couronne-racine inférieur à 1:1"},
		{ID: rules.RuleFixedCrownRootWorst, Label: "Rapport couronne-racine du pilier de bridge", Description: "Pilier de bridge avec un rapport couronne-racine inférieur à 1:1"},
		{ID: rules.RuleRBBEnamelNotOK, Label: "Émail insuffisant pour le collage", Description: "Émail du pilier inadapté à un ancrage collé"},
		{ID: rules.RuleRBBHighCaries, Label: "Risque carieux élevé pour bridge collé", Description: "Les bridges collés sont évités chez les patients à risque carieux élevé"},
		{ID: rules.RuleCompromisedAbutment, Label: "Pilier compromis", Description: "Pilier porteur avec un statut compromis"},
		{ID: rules.RuleOcclusionRisk, Label: "Occlusion défavorable", Description: "Schéma occlusal lourd chargeant la restauration"},
		{ID: rules.RuleParafunction, Label: "Parafonction", Description: "Bruxisme ou serrement"},
		{ID: rules.RuleCariesOrHygiene, Label: "Risque carieux ou d'hygiène", Description: "Risque carieux élevé ou contrôle de plaque insuffisant"},
		{ID: rules.RulePierRigidConnector, Label: "Pilier intermédiaire", Description: "Les connecteurs rigides sur pilier intermédiaire risquent le descellement"},
		{ID: rules.RuleOpposingNaturalLoad, Label: "Denture antagoniste naturelle", Description: "Des dents antagonistes naturelles augmentent la charge fonctionnelle"},
		{ID: rules.RuleRPDComplexDesign, Label: "Conception amovible complexe", Description: "La classe de Kennedy et les modifications compliquent le châssis"},
		{ID: rules.RuleSharedCantileverAbutment, Label: "Pilier cantilever partagé", Description: "Deux cantilevers ne peuvent pas charger le même pilier"},
		{ID: rules.RuleImplantSystemicLoad, Label: "Risque de cicatrisation implantaire", Description: "Facteurs systémiques compromettant la cicatrisation implantaire"},
		{ID: rules.RuleRemovableExcessPerArch, Label: "Prothèses amovibles multiples", Description: "Plus d'une prothèse amovible planifiée dans la même arcade"},
		{ID: rules.InsufficientDataRuleID, Label: "Données insuffisantes", Description: "Un champ clinique requis n'a pas été renseigné"},
	},
}
