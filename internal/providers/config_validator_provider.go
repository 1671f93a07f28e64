package providers

import (
	"errors"
	"github.com/gookit/validate"
	"portal/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks struct tags first, then the rules that depend on more than
// one field.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	if cv.conf.Store.Driver == "redis" && cv.conf.Store.Redis.URL == "" {
		return errors.New("store.redis.url is required for the redis driver")
	}
	if cv.conf.Auth.Enabled && cv.conf.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required when auth is enabled")
	}
	if cv.conf.Assets.Bucket != "" && cv.conf.Assets.Region == "" {
		return errors.New("assets.region is required when a bucket is configured")
	}
	return nil
}
