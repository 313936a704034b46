package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	specsyncerrors "specsync/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern      = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	serviceNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	kindPattern        = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("service_name", func(fl validator.FieldLevel) bool {
			return serviceNamePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("artifact_kind", func(fl validator.FieldLevel) bool {
			return kindPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation on the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return specsyncerrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	nameIndex := make(map[string]int, len(cfg.Services))
	for i, svc := range cfg.Services {
		if _, exists := nameIndex[svc.Name]; exists {
			return specsyncerrors.NewValidationError(fieldForService(i, "name"), fmt.Sprintf("duplicate service name %q", svc.Name), nil)
		}
		nameIndex[svc.Name] = i

		if err := validateAuth(svc, i); err != nil {
			return err
		}

		seenKinds := make(map[string]struct{}, len(svc.Artifacts))
		for _, kind := range svc.Artifacts {
			if _, dup := seenKinds[kind]; dup {
				return specsyncerrors.NewValidationError(fieldForService(i, "artifacts"), fmt.Sprintf("duplicate artifact kind %q", kind), nil)
			}
			seenKinds[kind] = struct{}{}
		}
	}

	if cfg.Notifier.Driver == "kafka" {
		if cfg.Notifier.Kafka == nil {
			return specsyncerrors.NewValidationError("notifier.kafka", "kafka block is required for the kafka driver", nil)
		}
		if err := v.Struct(cfg.Notifier.Kafka); err != nil {
			return convertValidationError(err)
		}
	}

	return nil
}

func validateAuth(svc Service, index int) error {
	switch svc.Auth.Kind {
	case "", "none":
		return nil
	case "bearer":
		if svc.Auth.SecretRef == "" {
			return specsyncerrors.NewValidationError(fieldForService(index, "auth.secret_ref"), "bearer auth requires a secret reference", nil)
		}
	case "header":
		if svc.Auth.SecretRef == "" {
			return specsyncerrors.NewValidationError(fieldForService(index, "auth.secret_ref"), "header auth requires a secret reference", nil)
		}
		if svc.Auth.Header == "" {
			return specsyncerrors.NewValidationError(fieldForService(index, "auth.header"), "header auth requires a header name", nil)
		}
	default:
		return specsyncerrors.NewValidationError(fieldForService(index, "auth.kind"), fmt.Sprintf("unknown auth kind %q", svc.Auth.Kind), nil)
	}
	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return specsyncerrors.NewValidationError(field, msg, err)
	}

	return specsyncerrors.NewValidationError("config", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func fieldForService(index int, field string) string {
	return fmt.Sprintf("services[%d].%s", index, field)
}
