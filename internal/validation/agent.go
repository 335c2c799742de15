package validation

import (
	"fmt"
	"strings"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/request"
)

// MaxNicknameLength bounds agent nicknames.
const MaxNicknameLength = 64

// ValidateRegisterAgent validates an agent registration request.
//
// Required fields:
//   - nickname: non-empty after trimming, at most 64 characters
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateRegisterAgent(req request.RegisterAgentRequest) error {
	errors := make(map[string]string)

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		errors["nickname"] = "nickname is required"
	} else if len(nickname) > MaxNicknameLength {
		errors["nickname"] = fmt.Sprintf("nickname must be at most %d characters", MaxNicknameLength)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
