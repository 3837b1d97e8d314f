package code

var (
	Success              = NewSuss(0, "success")
	ErrorServer          = NewError(10000, "internal server error")
	ErrorInvalidParams   = NewError(10001, "invalid request parameters")
	ErrorNotFound        = NewError(10002, "resource not found")
	ErrorTooManyRequests = NewError(10003, "too many requests")

	ErrorJobNotFound       = NewError(20001, "backup job not found")
	ErrorCronInvalid       = NewError(20002, "invalid cron expression")
	ErrorSyncActive        = NewError(20003, "a sync is already in progress")
	ErrorSyncToolMissing   = NewError(20004, "archiver tooling is not installed")
	ErrorSyncSourceMissing = NewError(20005, "sync source directory does not exist")
	ErrorSettingSave       = NewError(20006, "failed to persist settings")
)
