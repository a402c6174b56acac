package flowapi

import (
	"fmt"
	"strconv"

	"github.com/nyaruka/phonenumbers"
)

// nationalNumber strips the country code from an E.164 number, since CRM
// phone fields are usually stored in national format.
func nationalNumber(phone string) (string, error) {
	parsed, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return "", fmt.Errorf("parsing phone number: %w", err)
	}
	return strconv.FormatUint(parsed.GetNationalNumber(), 10), nil
}
