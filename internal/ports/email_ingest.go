package ports

// EmailIngest defines the interface for inbound email surfaces
type EmailIngest interface {
	// Start begins accepting traffic; it must not block
	Start() error

	// Stop stops accepting traffic
	Stop() error
}
