package services

import (
	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Register the enumeration check for task types
	if err := validate.RegisterValidation("tasktype", func(fl validator.FieldLevel) bool {
		return model.TaskType(fl.Field().String()).IsValid()
	}); err != nil {
		panic(err)
	}
}
