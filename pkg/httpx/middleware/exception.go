package middleware

import (
	"runtime/debug"

	"github.com/go-foundry/foundry/pkg/httpx"
	"github.com/go-foundry/foundry/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// ExceptionMiddleware recovers from panics and answers with a 500 body.
func ExceptionMiddleware(c *fiber.Ctx) error {
	defer func() {
		if err := recover(); err != nil {
			_ = httpx.WithRepErr(c, httpx.InternalError.Code, errorToString(err), c.Path())
			log.Errorf("panic: %v", err)
		}
	}()

	return c.Next()
}

func errorToString(err any) string {
	switch v := err.(type) {
	case httpx.ResponseErr:
		if errMsg, ok := v.ErrMsg.(string); ok {
			return errMsg
		}
		return httpx.InternalError.Msg
	case error:
		// never leak the stack to the client
		log.Errorf("panic: %v\n%s", v, debug.Stack())
		return httpx.InternalError.Msg
	default:
		if errMsg, ok := v.(string); ok {
			return errMsg
		}
		return httpx.InternalError.Msg
	}
}
