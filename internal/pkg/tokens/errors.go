package tokens

import (
	"errors"
	"fmt"
)

// ErrInvalidAmount rejects zero or negative grant/debit amounts before any
// row is touched.
var ErrInvalidAmount = errors.New("token amount must be positive")

// InsufficientTokensError is returned by Debit when the balance cannot cover
// the requested amount. It carries the exact shortfall so the UI can tell the
// user how many more tokens they need.
type InsufficientTokensError struct {
	Needed   int64 `json:"tokensNeeded"`
	Current  int64 `json:"currentBalance"`
	Required int64 `json:"required"`
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("insufficient tokens: have %d, need %d (%d more required)", e.Current, e.Required, e.Needed)
}

// AsInsufficientTokens unwraps err into an InsufficientTokensError if it is one.
func AsInsufficientTokens(err error) (*InsufficientTokensError, bool) {
	var ite *InsufficientTokensError
	if errors.As(err, &ite) {
		return ite, true
	}
	return nil, false
}
