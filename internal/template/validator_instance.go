package template

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate

	identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// validatorInstance lazily builds the shared validator, mirroring the
// teacher's sync.Once-guarded singleton in internal/config/validator_instance.go.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
			return identifierPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("input_type", func(fl validator.FieldLevel) bool {
			switch InputType(fl.Field().String()) {
			case TypeString, TypeInteger, TypeFloat, TypeBoolean, TypeList, TypeMap:
				return true
			default:
				return true // custom/unknown types fall back to null per spec.md §4.2, not a validation failure
			}
		})
		validatorInst = v
	})
	return validatorInst
}

// validatableInput is the shape go-playground/validator checks a
// TemplateInput against; TemplateInput itself has no struct tags because it
// also needs to carry a decoded `any` default that validator should ignore.
type validatableInput struct {
	Name string `validate:"required,identifier"`
	Type string `validate:"required,input_type"`
}

func validateInput(in TemplateInput) error {
	return validatorInstance().Struct(validatableInput{Name: in.Name, Type: string(in.Type)})
}

type validatableNodeTemplate struct {
	Name string `validate:"required,identifier"`
	Type string `validate:"required"`
}

func validateNodeTemplate(nt NodeTemplate) error {
	return validatorInstance().Struct(validatableNodeTemplate{Name: nt.Name, Type: nt.TypeID})
}
