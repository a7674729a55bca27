// Package i18n provides the interface text in the supported languages.
package i18n

// Locales supported by the interface.
var Locales = []string{"en", "fr"}

var tables = map[string]map[string]string{
	"en": {
		"login.title":         "Sign in to Sprava",
		"login.mail":          "Mail",
		"login.password":      "Password",
		"login.submit":        "Sign in",
		"login.signup":        "Create account",
		"login.failed":        "Sign in failed",
		"conversations.title": "Conversations",
		"conversations.empty": "No conversations yet",
		"thread.placeholder":  "Write a message",
		"thread.load_more":    "Loading older messages...",
		"thread.typing":       "typing...",
		"status.connecting":   "connecting",
		"status.online":       "online",
		"status.offline":      "offline",
		"status.reconnecting": "reconnecting",
		"friends.title":       "Friends",
		"friends.requests":    "Friend requests",
		"friends.accept":      "Accept",
		"friends.reject":      "Reject",
		"presence.online":     "online",
		"presence.offline":    "offline",
	},
	"fr": {
		"login.title":         "Connexion à Sprava",
		"login.mail":          "Courriel",
		"login.password":      "Mot de passe",
		"login.submit":        "Se connecter",
		"login.signup":        "Créer un compte",
		"login.failed":        "Échec de la connexion",
		"conversations.title": "Conversations",
		"conversations.empty": "Aucune conversation",
		"thread.placeholder":  "Écrire un message",
		"thread.load_more":    "Chargement des messages...",
		"thread.typing":       "écrit...",
		"status.connecting":   "connexion",
		"status.online":       "en ligne",
		"status.offline":      "hors ligne",
		"status.reconnecting": "reconnexion",
		"friends.title":       "Amis",
		"friends.requests":    "Demandes d'ami",
		"friends.accept":      "Accepter",
		"friends.reject":      "Refuser",
		"presence.online":     "en ligne",
		"presence.offline":    "hors ligne",
	},
}

// T returns the text for a key in the given locale. Unknown locales fall
// back to English; unknown keys come back as the key itself so a missing
// entry is visible instead of blank.
func T(locale, key string) string {
	table, ok := tables[locale]
	if !ok {
		table = tables["en"]
	}
	if s, ok := table[key]; ok {
		return s
	}
	if s, ok := tables["en"][key]; ok {
		return s
	}
	return key
}
