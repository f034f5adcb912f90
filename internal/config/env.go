package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	perrors "github.com/parleychat/parley/internal/errors"
)

// Reconnect policy names accepted in PARLEY_RECONNECT.
const (
	ReconnectAlways  = "always"
	ReconnectBackoff = "backoff"
)

// Env holds the endpoint settings read from the process environment.
type Env struct {
	WSBaseURL       string `envconfig:"WS_BASE_URL" default:"ws://127.0.0.1:8080/ws" validate:"required,url"`
	APIBaseURL      string `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8080/api" validate:"omitempty,url"`
	SupabaseURL     string `envconfig:"SUPABASE_URL" validate:"omitempty,url"`
	SupabaseAnonKey string `envconfig:"SUPABASE_ANON_KEY" validate:"required_with=SupabaseURL"`
	Reconnect       string `envconfig:"PARLEY_RECONNECT" default:"always" validate:"oneof=always backoff"`
}

var validate = validator.New()

// LoadEnv loads .env files (if any exist) into the environment without
// overriding variables that are already set, then decodes and validates Env.
// With no arguments godotenv looks for ".env" in the working directory.
func LoadEnv(files ...string) (Env, error) {
	// A missing .env file is the common case.
	_ = godotenv.Load(files...)

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return env, perrors.E(perrors.Op("config.LoadEnv"), perrors.KindConfig, err)
	}
	if err := validate.Struct(env); err != nil {
		return env, perrors.ConfigInvalid(err.Error())
	}
	return env, nil
}

// AuthConfigured reports whether an auth backend was configured.
func (e Env) AuthConfigured() bool {
	return e.SupabaseURL != ""
}
