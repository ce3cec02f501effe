package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL          = "error.internal"
	ERROR_NOT_FOUND         = "error.notfound"
	ERROR_INVALIDARGUMENT   = "error.invalidargument"
	ERROR_PERMISSION_DENIED = "error.permission.denied"
	ERROR_UNAUTHORIZED      = "error.unauthorized"
	ERROR_EXIST             = "error.exist"
	ERROR_FORBIDDEN         = "error.forbidden"
	ERROR_TOO_MANY_REQUESTS = "error.tooManyRequests"

	ERROR_INVALID_TOKEN = "error.invalid.token"

	ERROR_CONVERSATION_NOT_FOUND    = "error.conversation.notfound"
	ERROR_NOT_PARTICIPANT           = "error.conversation.not_participant"
	ERROR_INVALID_MESSAGE_CONTENT   = "error.message.invalid_content"
	ERROR_INVALID_MESSAGE_REFERENCE = "error.message.invalid_reference"
	ERROR_MESSAGE_NOT_FOUND         = "error.message.notfound"
	ERROR_MESSAGE_NOT_OWNER         = "error.message.not_owner"
	ERROR_DEVICE_PLATFORM_UNKNOWN   = "error.device.platform.unknown"
)
