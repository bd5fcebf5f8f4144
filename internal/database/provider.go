package database

import (
	"errors"
)

var (
	postgresIdentityWriter   func() IdentityWriter
	postgresDescriptorWriter func() DescriptorWriter
	postgresAttendanceWriter func() AttendanceWriter
	postgresInitialized      bool
)

// RegisterPostgresBackend registers PostgreSQL repository constructors.
// This is called by the postgres package to avoid import cycles.
func RegisterPostgresBackend(
	identities func() IdentityWriter,
	descriptors func() DescriptorWriter,
	attendance func() AttendanceWriter,
) {
	postgresIdentityWriter = identities
	postgresDescriptorWriter = descriptors
	postgresAttendanceWriter = attendance
	postgresInitialized = true
}

// GetIdentityWriter returns an IdentityWriter from the PostgreSQL backend
func GetIdentityWriter() (IdentityWriter, error) {
	if !postgresInitialized {
		return nil, errors.New("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	return postgresIdentityWriter(), nil
}

// GetDescriptorWriter returns a DescriptorWriter from the PostgreSQL backend
func GetDescriptorWriter() (DescriptorWriter, error) {
	if !postgresInitialized {
		return nil, errors.New("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	return postgresDescriptorWriter(), nil
}

// GetAttendanceWriter returns an AttendanceWriter from the PostgreSQL backend
func GetAttendanceWriter() (AttendanceWriter, error) {
	if !postgresInitialized {
		return nil, errors.New("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	return postgresAttendanceWriter(), nil
}
