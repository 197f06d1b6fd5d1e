package globals

// Context keys
type ContextKey string

const CapabilityKey ContextKey = "capability"
const RequestIDKey ContextKey = "requestId"

// Collection names
const (
	BuildingsCollection = "buildings"
	ToursCollection     = "tours"
	UsersCollection     = "users"
)

// Redis channels and key prefixes
const (
	CatalogEventsChannel = "campus-catalog-events"
	BuildingListPrefix   = "buildings:list:"
)

// JwtSecret signs and verifies capability tokens. Set from config at startup.
var JwtSecret []byte
