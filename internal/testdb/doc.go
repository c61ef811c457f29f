// Package testdb provides utilities for database integration tests.
//
// It implements a transaction-based isolation pattern: each test runs inside
// its own transaction which is rolled back when the test completes, so tests
// can run in parallel against one database without cleanup.
//
// Basic usage:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        cards := postgres.NewPostgresCardStore(tx, nil)
//	        // ...
//	    })
//	}
//
// GetTestDBWithT skips the test when no database URL is configured, and
// applies the embedded schema migrations once per test binary.
package testdb
