package errs

const (
	ErrCode_OK            = 0
	ErrCode_Unknown       = 1
	ErrCode_CallbackPanic = 2
	ErrCode_PoolSubmit    = 3
)

var (
	Unknown       = CreateCodeError(ErrCode_Unknown, "UNKNOWN")
	CallbackPanic = CreateCodeError(ErrCode_CallbackPanic, "CALLBACK_PANIC")
	PoolSubmit    = CreateCodeError(ErrCode_PoolSubmit, "POOL_SUBMIT")
)
