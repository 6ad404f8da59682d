package constants

// Error codes returned in service errors
const (
	ErrCodeValidation    = "VALIDATION_FAILED"
	ErrCodeInvalidParam  = "INVALID_PARAMETER"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeDuplicate     = "DUPLICATE_VALUE"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeGroupInUse    = "GROUP_IN_USE"
	ErrCodeInvalidImage  = "INVALID_IMAGE"
	ErrCodeTokenExpired  = "TOKEN_EXPIRED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

const (
	MsgInternalError      = "Something went wrong, please try again later"
	MsgInvalidRequest     = "Invalid request"
	MsgInvalidCredentials = "Invalid email or password"
	MsgUnauthorized       = "Unauthorized: please sign in"
	MsgInvalidResetToken  = "Reset link is invalid or has expired"
	MsgParticipantMissing = "Participant not found"
	MsgFormReturnMissing  = "Form return not found"
	MsgGroupMissing       = "Group not found"
	MsgUserMissing        = "User not found"
	MsgGroupInUse         = "Group cannot be deleted while participants are registered under it"
	MsgEmailTaken         = "Email is already registered"
	MsgGroupNameTaken     = "Group name already exists"
	MsgImagesRequired     = "Both form images are required"
	MsgCannotChangeOwn    = "You cannot change your own role"
)
