package reservations

import (
	"crypto/rand"
	"fmt"

	"github.com/schooldesk/reservations-api/internal/models"
	"gorm.io/gorm"
)

// codeAlphabet omits lookalike characters (0/O, 1/I/L) so codes survive
// being read over the phone.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 6

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// uniqueConfirmationCode generates a code not yet used within the event.
// Collisions are vanishingly rare at this alphabet size, but the unique
// index is the backstop, so a few attempts are enough.
func uniqueConfirmationCode(tx *gorm.DB, eventID uint) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		var n int64
		err = tx.Model(&models.Registration{}).
			Where("event_id = ? AND confirmation_code = ?", eventID, code).
			Count(&n).Error
		if err != nil {
			return "", fmt.Errorf("check confirmation code: %w", err)
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique confirmation code for event %d", eventID)
}
