// Package all registers every storage backend with the factory via blank
// imports. Programs import this package once (typically from main) so that
// the backend named in the config is available without importing each backend
// package directly.
package all

import (
	_ "logtop/internal/storage/postgres"
	_ "logtop/internal/storage/sqlite"
)
