// Package intent classifies normalized user messages into conversational
// intents. The actual model lives behind the Predictor interface; this
// package supplies the static intent definitions, an HTTP predictor for an
// external model service, a keyword predictor usable without one, and the
// thresholding adapter the router consumes.
package intent

// Prediction is one (label, probability) pair returned by a classifier,
// probability in [0,1].
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Sentinel labels the adapter substitutes when classification cannot
// produce a usable prediction.
const (
	LabelUnknown = "unknown"
	LabelError   = "error"
)

// Definition binds an intent tag to its trigger patterns, the canned reply
// templates the router rotates through, and an optional action hint for
// the frontend.
type Definition struct {
	Tag       string
	Patterns  []string
	Responses []string
	Action    string
}

// definitions is the static intent table. Patterns are matched against
// normalized (lower-cased, abbreviation-expanded) text.
var definitions = []Definition{
	{
		Tag:      "salutation",
		Patterns: []string{"bonjour", "salut", "bonsoir", "coucou", "hello", "bienvenue"},
		Responses: []string{
			"Bonjour ! Comment puis-je vous aider aujourd'hui ?",
			"Salut ! Que puis-je faire pour vous ?",
			"Bonjour ! Ravi de vous voir. Une question sur nos cours ?",
		},
	},
	{
		Tag:      "au_revoir",
		Patterns: []string{"au revoir", "bye", "a bientot", "a plus", "bonne journee", "adieu"},
		Responses: []string{
			"Au revoir ! À bientôt sur la plateforme.",
			"Bonne continuation ! N'hésitez pas à revenir.",
			"À bientôt ! Bon apprentissage.",
		},
	},
	{
		Tag:      "remerciement",
		Patterns: []string{"merci", "merci beaucoup", "super merci", "genial"},
		Responses: []string{
			"Avec plaisir !",
			"De rien, c'est un plaisir de vous aider.",
			"Je vous en prie !",
		},
	},
	{
		Tag:      "aide",
		Patterns: []string{"aide", "aider", "aidez moi", "comment faire", "je suis perdu", "probleme"},
		Responses: []string{
			"Je peux vous aider à trouver un cours : dites-moi simplement quelle technologie vous intéresse.",
			"Besoin d'aide ? Demandez-moi un cours par son nom, par exemple \"cours javascript\".",
		},
		Action: "show_help",
	},
	{
		Tag:      "liste_cours",
		Patterns: []string{"quels cours", "liste des cours", "catalogue", "que proposez vous", "voir les cours"},
		Responses: []string{
			"Vous pouvez consulter tous nos cours dans le catalogue. Quelle technologie vous intéresse ?",
			"Notre catalogue couvre le développement web, les bases de données et bien plus. Dites-moi ce que vous cherchez !",
		},
		Action: "show_catalog",
	},
	{
		Tag:      "inscription",
		Patterns: []string{"inscription", "inscrire", "comment s inscrire", "rejoindre un cours"},
		Responses: []string{
			"Pour vous inscrire à un cours, ouvrez sa page et cliquez sur \"S'inscrire\".",
			"L'inscription se fait directement depuis la page du cours qui vous intéresse.",
		},
	},
	{
		Tag:      "progression",
		Patterns: []string{"progression", "mon avancement", "ou en suis je", "mes resultats"},
		Responses: []string{
			"Votre progression est visible depuis votre tableau de bord.",
			"Rendez-vous sur votre tableau de bord pour suivre votre avancement.",
		},
		Action: "show_progress",
	},
}

// Definitions returns the static intent table.
func Definitions() []Definition {
	return definitions
}

// DefinitionFor returns the definition for tag, or false when the tag is
// not in the table (including the sentinel labels).
func DefinitionFor(tag string) (Definition, bool) {
	for _, d := range definitions {
		if d.Tag == tag {
			return d, true
		}
	}
	return Definition{}, false
}

// Count returns the number of known intents, reported by the health
// endpoint as num_intents.
func Count() int {
	return len(definitions)
}
