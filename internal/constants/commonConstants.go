package constants

type (
	RequestSource string
	APIStatus     string
	CachePrefix   string
)

const (
	RequestSourceSession RequestSource = "SESSION"
	RequestSourceJWT     RequestSource = "JWT"

	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixList      CachePrefix = "LIST_"
	CachePrefixDashboard CachePrefix = "DASH_"
	CachePrefixGen       CachePrefix = "GEN_"
	CachePrefixSession   CachePrefix = "SESSION_"
)

// Resource names, used as cache namespaces, metric labels and export file names.
const (
	ResourceParticipants = "participants"
	ResourceFormReturns  = "form-returns"
	ResourceGroups       = "groups"
	ResourceUsers        = "users"
	ResourceDashboard    = "dashboard"
)

// Storage folders for uploaded images.
const (
	FolderFormReturns = "form-returns"
	FolderProfiles    = "profiles"
)

const UnknownBucket = "Unknown"
