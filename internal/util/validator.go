package util

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct applique les tags `validate` d'un payload de requête.
// Retourne une erreur par champ fautif, lisible côté client.
func ValidateStruct(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s obligatoire", strings.ToLower(fe.Field())))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s invalide", strings.ToLower(fe.Field())))
		case "min", "max", "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s hors limites", strings.ToLower(fe.Field())))
		default:
			msgs = append(msgs, fmt.Sprintf("%s invalide", strings.ToLower(fe.Field())))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ValidateEmail retourne une erreur pour les emails invalides.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email obligatoire")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email invalide")
	}
	return nil
}

// ValidatePassword vérifie les exigences minimales du mot de passe.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("le mot de passe doit compter au moins 8 caractères")
	}
	return nil
}

// RequireString garantit une chaîne non vide.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obligatoire")
	}
	return nil
}
