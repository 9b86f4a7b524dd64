package utils

import (
	"math/rand"
	"time"

	"github.com/anjiri1684/activity_hub/models"
	"gorm.io/gorm"
)

const discountCodeLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueDiscountCode keeps drawing random codes until one is unused.
func GenerateUniqueDiscountCode(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, discountCodeLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := string(b)

		var existing models.DiscountCode
		err := tx.Where("code = ?", code).First(&existing).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return code, nil
			}
			return "", err
		}
	}
}
