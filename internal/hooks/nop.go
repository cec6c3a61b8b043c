// Package hooks provides the default no-op monitoring hooks.
package hooks

import (
	"github.com/arloliu/vigil/types"
)

// Nop returns hooks with no-op callbacks.
//
// This is the default used when no custom hooks are provided,
// eliminating the need for nil checks on the Hooks pointer throughout
// the codebase. Individual callback fields are still nil and skipped at
// the call sites.
//
// Returns:
//   - *types.Hooks: Hooks value with no callbacks set
func Nop() *types.Hooks {
	return &types.Hooks{}
}
