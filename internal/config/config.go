package config

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/robinovitch61/vl/internal/keymap"
	"github.com/robinovitch61/vl/internal/virtualizer"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config is built once at startup from flags, environment and config file, and is read-only afterwards
type Config struct {
	ItemsPath        string        `validate:"omitempty,yaml_path"`
	Count            int           `validate:"required_without=ItemsPath,gte=0,lte=100000000"`
	PageSize         int           `validate:"gte=1,lte=10000"`
	Latency          time.Duration `validate:"gte=0s,lte=1m"`
	FailRate         float64       `validate:"gte=0,lte=1"`
	Overscan         int           `validate:"gte=0,lte=1000"`
	EstimatedRowSize int           `validate:"gte=1,lte=1000"`
	Wrap             bool
	Stats            bool
	LogLevel         string `validate:"oneof=trace debug info warn error disabled"`
	// LogFile receives the application log. Empty disables it, since stdout and stderr belong to the terminal UI
	LogFile string `validate:"omitempty,filepath"`
	Seed    int64
	Version string
	KeyMap  keymap.KeyMap `validate:"-"`
}

// Default returns the configuration used for unset values
func Default() Config {
	return Config{
		Count:            1_000_000,
		PageSize:         virtualizer.DefaultPageSize,
		Latency:          150 * time.Millisecond,
		Overscan:         virtualizer.DefaultOverscan,
		EstimatedRowSize: virtualizer.DefaultEstimatedRowSize,
		Wrap:             true,
		LogLevel:         "info",
		KeyMap:           keymap.DefaultKeyMap(),
	}
}

// VirtualizerOptions maps the configured tuning onto virtualizer options
func (c Config) VirtualizerOptions() virtualizer.Options {
	opts := virtualizer.DefaultOptions()
	opts.PageSize = c.PageSize
	opts.Overscan = c.Overscan
	opts.EstimatedRowSize = c.EstimatedRowSize
	return opts
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("yaml_path", func(fl validator.FieldLevel) bool {
			ext := strings.ToLower(filepath.Ext(fl.Field().String()))
			return ext == ".yaml" || ext == ".yml"
		})
		validateInst = v
	})
	return validateInst
}

// Validate checks every field and returns the first problem as a *ValidationError
func Validate(cfg *Config) error {
	if cfg == nil {
		return NewValidationError("", "configuration is nil", nil)
	}
	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}
	return nil
}

func convertValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidationError("", err.Error(), err)
	}
	fe := verrs[0]
	return NewValidationError(flagName(fe.Field()), messageFor(fe), err)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required_without":
		return "required unless items is set"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "filepath":
		return "must be a file path"
	case "yaml_path":
		return "must be a .yaml or .yml file"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// flagName maps a struct field to the command line flag that sets it
func flagName(field string) string {
	switch field {
	case "ItemsPath":
		return "items"
	case "EstimatedRowSize":
		return "estimate"
	}
	var sb strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
		}
		sb.WriteRune(r)
	}
	return strings.ToLower(sb.String())
}
