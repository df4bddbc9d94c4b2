package user

import (
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/joesive47/skillnexus-lms-sub005/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(validate, translator, allRolesTag, allRolesText)
}

// allRolesValidation checks that provided user roles are all in AllRoles.
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	sorted := append([]string(nil), AllRoles...)
	sort.Strings(sorted)
	for _, role := range roles {
		idx := sort.SearchStrings(sorted, role)
		if idx >= len(sorted) || sorted[idx] != role {
			return false
		}
	}
	return true
}
