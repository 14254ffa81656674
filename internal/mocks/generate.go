// Package mocks provides gomock implementations of the core ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockUsersAPI(ctrl)
//	api.EXPECT().List(gomock.Any()).Return(users, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=users_api_mock.go github.com/target/userdesk/internal/core UsersAPI

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=state_store_mock.go github.com/target/userdesk/internal/core StateStore
