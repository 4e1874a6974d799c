package country

import (
	"fmt"

	"github.com/goliatone/go-errors"
)

// Error categories raised by stores and sources.
var (
	CategoryStorageUnavailable = errors.Category("storage_unavailable")
	CategoryNetwork            = errors.CategoryExternal.Extend("network")
	CategoryDecode             = errors.CategoryExternal.Extend("decode")
	CategoryNotFound           = errors.CategoryNotFound
)

// StorageUnavailable wraps a persistence failure.
func StorageUnavailable(source error, op string) error {
	if source == nil {
		return nil
	}
	return errors.Wrap(source, CategoryStorageUnavailable, "storage "+op+" failed").
		WithTextCode("STORAGE_UNAVAILABLE")
}

// NetworkError wraps a transport failure talking to a remote source.
func NetworkError(source error, message string) *errors.Error {
	if source == nil {
		return errors.New(message, CategoryNetwork).WithTextCode("NETWORK_ERROR")
	}
	return errors.Wrap(source, CategoryNetwork, message).WithTextCode("NETWORK_ERROR")
}

// DecodeError wraps a malformed payload from a remote source.
func DecodeError(source error, message string) *errors.Error {
	if source == nil {
		return errors.New(message, CategoryDecode).WithTextCode("DECODE_ERROR")
	}
	return errors.Wrap(source, CategoryDecode, message).WithTextCode("DECODE_ERROR")
}

// NotFound reports a lookup for a name that is not stored.
func NotFound(name string) error {
	return errors.New(fmt.Sprintf("country %q not found", name), CategoryNotFound).
		WithTextCode("COUNTRY_NOT_FOUND").
		WithMetadata(map[string]any{"name": name})
}

func IsStorageUnavailable(err error) bool {
	return errors.HasCategory(err, CategoryStorageUnavailable)
}

func IsNetworkError(err error) bool {
	return errors.HasCategory(err, CategoryNetwork)
}

func IsDecodeError(err error) bool {
	return errors.HasCategory(err, CategoryDecode)
}

func IsNotFound(err error) bool {
	return errors.HasCategory(err, CategoryNotFound)
}

func IsValidation(err error) bool {
	return errors.HasCategory(err, errors.CategoryValidation)
}
