package errors

import "fmt"

var (
	ErrUnknownSenderType = fmt.Errorf("unknown sender type")
	ErrUnknownChannel    = fmt.Errorf("unknown channel")
	ErrEmptyBody         = fmt.Errorf("message body is empty")
	ErrUnauthorized      = fmt.Errorf("caller is not authenticated")
	ErrRateLimited       = fmt.Errorf("rate limit exceeded")
	ErrGenerationFailed  = fmt.Errorf("text generation failed")
	ErrMessageNotFound   = fmt.Errorf("message not found")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
)
