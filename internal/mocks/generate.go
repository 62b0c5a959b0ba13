// Package mocks provides mock implementations of the gatekeeper ports for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockRecordStore(ctrl)
//	store.EXPECT().Get(gomock.Any(), "a@example.com").Return(access.Record{}, false, nil)
package mocks

// Generate mock for RecordStore interface from internal/ports package.
// This creates MockRecordStore with methods: Get, Put, List
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=record_store_mock.go github.com/target/gatekeeper/internal/ports RecordStore

// Generate mock for Navigator interface from internal/ports package.
// This creates MockNavigator with methods: Navigate
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=navigator_mock.go github.com/target/gatekeeper/internal/ports Navigator

// Generate mock for PendingRedirectStore interface from internal/ports package.
// This creates MockPendingRedirectStore with methods: Set, Take, Clear
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=pending_redirect_store_mock.go github.com/target/gatekeeper/internal/ports PendingRedirectStore
