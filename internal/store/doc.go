// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the scheduling logic, so the scheduler and the services stay independent
// of specific database technologies or persistence details.
//
// Implementations translate driver errors into the sentinels declared here;
// callers test them with errors.Is or the Is*Error helpers.
package store
