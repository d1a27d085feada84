package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrImportFormat   ErrCode = "IMPORT_FORMAT"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Seating editor ────────────────────────────────────────────────
	ErrNoDeskSelected ErrCode = "NO_DESK_SELECTED"
	ErrDeskOutOfRange ErrCode = "DESK_OUT_OF_RANGE"
	ErrSessionClosed  ErrCode = "SESSION_CLOSED"

	// ─── Persistence ───────────────────────────────────────────────────
	ErrPersistence ErrCode = "PERSISTENCE_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Veuillez remplir tous les champs obligatoires."
	case ErrInvalidID:
		return "Format d'identifiant invalide."
	case ErrInvalidPayload:
		return "Contenu de la requête invalide."
	case ErrImportFormat:
		return "Le fichier importé est invalide ou dans un format non supporté."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Élément introuvable."
	case ErrConflict:
		return "Cet élément existe déjà."
	case ErrDependencyExists:
		return "Suppression impossible : cet élément est encore utilisé."

	// ─── Seating editor ────────────────────────────────────────────────
	case ErrNoDeskSelected:
		return "Veuillez d'abord sélectionner une place."
	case ErrDeskOutOfRange:
		return "Cette place n'existe pas dans la salle."
	case ErrSessionClosed:
		return "La session d'édition est fermée."

	// ─── Persistence ───────────────────────────────────────────────────
	case ErrPersistence:
		return "Les données n'ont pas pu être sauvegardées."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Trop de requêtes. Veuillez réessayer plus tard."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Erreur interne du serveur."
	default:
		return "Une erreur inattendue est survenue."
	}
}
