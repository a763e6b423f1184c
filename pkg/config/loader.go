package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]any)

	defaultEnvLoaded sync.Once
)

// Load parses environment variables into the provided configuration struct
// based on its `env` field tags. The first call loads a .env file if one
// exists. Each configuration type is parsed once per process; later calls
// for the same type return the cached value.
//
//	type StoreConfig struct {
//		URL      string `env:"MONGODB_URL,required"`
//		Database string `env:"MONGODB_DATABASE" envDefault:"app"`
//	}
//
//	var cfg StoreConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	typeName := typeNameOf[T]()

	cacheMu.RLock()
	cached, ok := cache[typeName]
	cacheMu.RUnlock()
	if ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	cacheMu.Lock()
	// First successful parse wins so concurrent loaders agree on one value.
	if cached, ok := cache[typeName]; ok {
		*v = cached.(T)
	} else {
		cache[typeName] = *v
	}
	cacheMu.Unlock()

	return nil
}

// MustLoad works like Load but panics on failure. Use for configuration the
// process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

func typeNameOf[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
