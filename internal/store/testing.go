package store

// OpenTest creates a Store backed by an in-memory database.
// This is only intended for use in tests.
func OpenTest() (*Store, error) {
	return openAt(":memory:")
}
