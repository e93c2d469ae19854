package redis

// DefaultStream is the stream the payment service consumes
const DefaultStream = "battleship:settlements"

// Config holds Redis connection and stream settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// Stream receives one entry per finished match
	Stream string

	// MaxLen caps the stream length; zero leaves it untrimmed
	MaxLen int64
}

// DefaultConfig returns sensible defaults for the settlement publisher
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     4,
		MinIdleConns: 1,
		Stream:       DefaultStream,
		MaxLen:       100000,
	}
}
