package auth

import "embed"

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS exposes the embedded auth schema migrations so the
// persistence client can register them at startup.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
