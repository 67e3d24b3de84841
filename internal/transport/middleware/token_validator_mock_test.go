package middleware

import (
	"sync"

	"github.com/heartmarshall/journalfeed/internal/auth"
)

var _ tokenValidator = &tokenValidatorMock{}

type tokenValidatorMock struct {
	AuthenticateFunc func(token string) (auth.Claims, error)

	calls struct {
		Authenticate []struct{ Token string }
	}
	lockAuthenticate sync.RWMutex
}

func (mock *tokenValidatorMock) Authenticate(token string) (auth.Claims, error) {
	if mock.AuthenticateFunc == nil {
		panic("tokenValidatorMock.AuthenticateFunc: method is nil but tokenValidator.Authenticate was just called")
	}
	callInfo := struct{ Token string }{Token: token}
	mock.lockAuthenticate.Lock()
	mock.calls.Authenticate = append(mock.calls.Authenticate, callInfo)
	mock.lockAuthenticate.Unlock()
	return mock.AuthenticateFunc(token)
}

func (mock *tokenValidatorMock) AuthenticateCalls() []struct{ Token string } {
	mock.lockAuthenticate.RLock()
	calls := mock.calls.Authenticate
	mock.lockAuthenticate.RUnlock()
	return calls
}
