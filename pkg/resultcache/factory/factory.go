package factory

import (
	"errors"

	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
)

type StoreType string

var (
	ErrTypeNotSupported = errors.New("result cache store type not supported")
	ErrWrongCreator     = errors.New("result cache store wrong creator")
)

//nolint:lll //readability
type Creator[S resultcache.Store, ImplOpt any] func([]resultcache.StoreOption, []ImplOpt) (S, error)

var registry = map[StoreType]any{}

// Register a new implementation generically
//
//nolint:whitespace //editor/linter issue
func Register[S resultcache.Store, ImplOpt any](
	key StoreType, creator Creator[S, ImplOpt],
) {
	registry[key] = creator
}

// Registered returns true if an implementation for key is available
func Registered(key StoreType) bool {
	_, ok := registry[key]
	return ok
}

// Create a new instance
//
//nolint:whitespace //editor/linter issue
func New[S resultcache.Store, ImplOpt any](
	key StoreType,
	common []resultcache.StoreOption,
	specific []ImplOpt,
) (S, error) {
	entry, ok := registry[key]
	if !ok {
		var zero S
		return zero, ErrTypeNotSupported
	}
	creator, ok := entry.(Creator[S, ImplOpt])
	if !ok {
		var zero S
		return zero, ErrWrongCreator
	}
	return creator(common, specific)
}
