package search

import "fmt"

type UnsupportedEngineError struct {
	Engine string
}

func (e *UnsupportedEngineError) Error() string {
	return fmt.Sprintf("unsupported search engine: %s", e.Engine)
}

type UnsupportedVariantError struct {
	Engine  Engine
	Variant int
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("unsupported variant %d for search engine %s", e.Variant, e.Engine)
}
