//go:build !unix

package filex

import "os"

// No advisory locking outside unix; writes are still atomic via rename.
func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }
