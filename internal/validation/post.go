package validation

import (
	"fmt"
	"strings"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api/request"
	"github.com/avdmeer/Post-Ledger-Backend/internal/model"
)

// MaxPostLength bounds post content.
const MaxPostLength = 280

// ValidateCreatePost validates a post creation request.
//
// Required fields:
//   - content: non-empty, at most 280 characters
//
// Optional fields (validated if provided):
//   - inReplyTo: must be a well-formed content address
//
// The timestamp field is deliberately not validated here: records keep the
// producer's raw text and validation is deferred to comparison time.
func ValidateCreatePost(req request.CreatePostRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Content) == "" {
		errors["content"] = "content is required"
	} else if len(req.Content) > MaxPostLength {
		errors["content"] = fmt.Sprintf("content must be at most %d characters", MaxPostLength)
	}

	if req.InReplyTo != "" {
		if err := model.Address(req.InReplyTo).Validate(); err != nil {
			errors["inReplyTo"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateHashPost validates a hash request; hashing needs content only.
func ValidateHashPost(req request.HashPostRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Content) == "" {
		errors["content"] = "content is required"
	} else if len(req.Content) > MaxPostLength {
		errors["content"] = fmt.Sprintf("content must be at most %d characters", MaxPostLength)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateAddress checks a content address supplied as a URL parameter.
func ValidateAddress(address string) error {
	if err := model.Address(address).Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	return nil
}
