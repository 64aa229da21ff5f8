package user

import (
	"fmt"
	"unicode/utf8"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
)

var (
	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must be at least %d characters long", pwdMinLen)
)

// InitValidators registers the password policy tag and its translation.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(pwdMinLenTag, pwdMinLenValidation)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
}

func pwdMinLenValidation(fl validator.FieldLevel) bool {
	return validPassword(fl.Field().String())
}

func validPassword(pwd string) bool {
	return utf8.RuneCountInString(pwd) >= pwdMinLen
}
