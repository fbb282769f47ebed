package promptgen

// questionTemplates maps language -> category name -> ordered question
// templates. Placeholders: {product}, {country}, {region}, {industry},
// {competitor}, {tool}. Unknown languages and categories fall back to the
// English Product set.
var questionTemplates = map[string]map[string][]string{
	"en": {
		"Product Information": {
			"What does {product} offer?",
			"What are the main features of {product}?",
			"How does {product} work?",
			"Is {product} available in {country}?",
			"What makes {product} different from other tools?",
		},
		"Pricing": {
			"How much does {product} cost?",
			"What pricing plans does {product} offer in {country}?",
			"Is there a free trial for {product}?",
			"Should I pay for {product} or choose a cheaper {tool}?",
			"What is the best value plan for {product}?",
		},
		"Comparison": {
			"How does {product} compare to {competitor}?",
			"What is the best alternative to {product} in {country}?",
			"Which should I choose, {product} or {competitor}?",
			"Is {product} better than {competitor} for {industry}?",
			"What are the top competitors of {product}?",
		},
		"Use Cases": {
			"What can I use {product} for?",
			"How do companies in {industry} use {product}?",
			"Can {product} handle {industry} workflows?",
			"What are common use cases for {product} in {country}?",
			"Does {product} work for small businesses?",
		},
		"Industry": {
			"Who are the market leaders for {tool} in {country}?",
			"What are the trends in the {industry} industry?",
			"How big is the market for {product} in {region}?",
			"Which {tool} providers operate in {country}?",
			"Is {product} popular in the {industry} sector?",
		},
		"Problems and Solutions": {
			"What problems does {product} solve?",
			"How can I fix common issues with {tool} software?",
			"Does {product} help with {industry} challenges?",
			"What is the best way to solve {industry} problems in {country}?",
			"Can {product} improve my workflow?",
		},
		"Integration": {
			"What integrations does {product} support?",
			"Does {product} have an API?",
			"Can {product} connect to my existing {tool}?",
			"How do I integrate {product} with other software?",
			"Is {product} compatible with common platforms?",
		},
		"Support": {
			"How do I contact {product} support?",
			"Does {product} offer support in {country}?",
			"Where can I find documentation for {product}?",
			"What does onboarding with {product} look like?",
			"Is there training available for {product}?",
		},
	},
	"de": {
		"Product Information": {
			"Was bietet {product} an?",
			"Was sind die wichtigsten Funktionen von {product}?",
			"Wie funktioniert {product}?",
			"Ist {product} in {country} verfügbar?",
			"Was unterscheidet {product} von anderen Tools?",
		},
		"Pricing": {
			"Wie viel kostet {product}?",
			"Welche Preismodelle bietet {product} in {country} an?",
			"Gibt es eine kostenlose Testversion von {product}?",
			"Soll ich für {product} bezahlen oder ein günstigeres {tool} wählen?",
			"Welcher Tarif von {product} bietet das beste Preis-Leistungs-Verhältnis?",
		},
		"Comparison": {
			"Wie schneidet {product} im Vergleich zu {competitor} ab?",
			"Was ist die beste Alternative zu {product} in {country}?",
			"Was soll ich wählen, {product} oder {competitor}?",
			"Ist {product} besser als {competitor} für {industry}?",
			"Wer sind die größten Wettbewerber von {product}?",
		},
		"Use Cases": {
			"Wofür kann ich {product} verwenden?",
			"Wie nutzen Unternehmen aus {industry} {product}?",
			"Kann {product} Arbeitsabläufe in {industry} abbilden?",
			"Was sind typische Anwendungsfälle für {product} in {country}?",
			"Eignet sich {product} für kleine Unternehmen?",
		},
		"Industry": {
			"Wer sind die Marktführer für {tool} in {country}?",
			"Was sind die Trends in der Branche {industry}?",
			"Wie groß ist der Markt für {product} in {region}?",
			"Welche Anbieter von {tool} gibt es in {country}?",
			"Ist {product} in der Branche {industry} verbreitet?",
		},
		"Problems and Solutions": {
			"Welche Probleme löst {product}?",
			"Wie behebe ich häufige Probleme mit {tool}-Software?",
			"Hilft {product} bei Herausforderungen in {industry}?",
			"Wie löst man {industry}-Probleme in {country} am besten?",
			"Kann {product} meinen Arbeitsablauf verbessern?",
		},
		"Integration": {
			"Welche Integrationen unterstützt {product}?",
			"Hat {product} eine API?",
			"Kann ich {product} mit meinem bestehenden {tool} verbinden?",
			"Wie integriere ich {product} mit anderer Software?",
			"Ist {product} mit gängigen Plattformen kompatibel?",
		},
		"Support": {
			"Wie erreiche ich den Support von {product}?",
			"Bietet {product} Support in {country} an?",
			"Wo finde ich die Dokumentation von {product}?",
			"Wie läuft das Onboarding bei {product} ab?",
			"Gibt es Schulungen für {product}?",
		},
	},
	"fr": {
		"Product Information": {
			"Que propose {product} ?",
			"Quelles sont les principales fonctionnalités de {product} ?",
			"Comment fonctionne {product} ?",
			"Est-ce que {product} est disponible en {country} ?",
			"Qu'est-ce qui distingue {product} des autres outils ?",
		},
		"Pricing": {
			"Combien coûte {product} ?",
			"Quels tarifs {product} propose-t-il en {country} ?",
			"Existe-t-il un essai gratuit de {product} ?",
			"Dois-je payer pour {product} ou choisir un {tool} moins cher ?",
			"Quelle offre de {product} a le meilleur rapport qualité-prix ?",
		},
		"Comparison": {
			"Comment {product} se compare-t-il à {competitor} ?",
			"Quelle est la meilleure alternative à {product} en {country} ?",
			"Que choisir entre {product} et {competitor} ?",
			"Est-ce que {product} est meilleur que {competitor} pour {industry} ?",
			"Quels sont les principaux concurrents de {product} ?",
		},
		"Use Cases": {
			"À quoi sert {product} ?",
			"Comment les entreprises de {industry} utilisent-elles {product} ?",
			"Est-ce que {product} convient aux flux de travail de {industry} ?",
			"Quels sont les cas d'usage courants de {product} en {country} ?",
			"{product} convient-il aux petites entreprises ?",
		},
		"Industry": {
			"Qui sont les leaders du marché des {tool} en {country} ?",
			"Quelles sont les tendances du secteur {industry} ?",
			"Quelle est la taille du marché de {product} en {region} ?",
			"Quels fournisseurs de {tool} opèrent en {country} ?",
			"Est-ce que {product} est populaire dans le secteur {industry} ?",
		},
		"Problems and Solutions": {
			"Quels problèmes {product} résout-il ?",
			"Comment résoudre les problèmes courants des logiciels {tool} ?",
			"Est-ce que {product} aide à relever les défis de {industry} ?",
			"Quelle est la meilleure façon de résoudre les problèmes de {industry} en {country} ?",
			"Est-ce que {product} peut améliorer mon flux de travail ?",
		},
		"Integration": {
			"Quelles intégrations {product} prend-il en charge ?",
			"Est-ce que {product} dispose d'une API ?",
			"Puis-je connecter {product} à mon {tool} existant ?",
			"Comment intégrer {product} à d'autres logiciels ?",
			"Est-ce que {product} est compatible avec les plateformes courantes ?",
		},
		"Support": {
			"Comment contacter le support de {product} ?",
			"Est-ce que {product} offre un support en {country} ?",
			"Où trouver la documentation de {product} ?",
			"Comment se passe la prise en main de {product} ?",
			"Existe-t-il des formations pour {product} ?",
		},
	},
}

const (
	fallbackLanguage = "en"
	fallbackCategory = "Product Information"
)

// templatesFor resolves the template list for a language and category,
// falling back to English and then to the Product set.
func templatesFor(language, categoryName string) []string {
	byCategory, ok := questionTemplates[language]
	if !ok {
		byCategory = questionTemplates[fallbackLanguage]
	}
	if list, ok := byCategory[categoryName]; ok {
		return list
	}
	if list, ok := byCategory[fallbackCategory]; ok {
		return list
	}
	return questionTemplates[fallbackLanguage][fallbackCategory]
}
